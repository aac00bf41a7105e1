// Package validator collects field-level validation errors for form and
// request payloads before they are sent to the library API.
package validator

import (
	"regexp"
	"slices"

	"github.com/gabriel-vasile/mimetype"
)

// DateRX matches calendar dates in YYYY-MM-DD form.
var DateRX = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validator holds a map of validation errors keyed by field name.
type Validator struct {
	Errors map[string]string
}

// New returns a Validator with an empty errors map.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid reports whether no errors have been recorded.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records a message for key. The first message recorded for a key wins.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check adds an error message to the map only if a validation check is not ok.
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// PermittedValue reports whether value is one of permittedValues.
func PermittedValue[T comparable](value T, permittedValues ...T) bool {
	return slices.Contains(permittedValues, value)
}

// Matches reports whether value matches rx.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// Mime reports whether the detected type, or one of its parents, is permitted.
// Parameters such as charset are ignored.
func Mime(mtype *mimetype.MIME, permittedTypes ...string) bool {
	for m := mtype; m != nil; m = m.Parent() {
		for _, t := range permittedTypes {
			if m.Is(t) {
				return true
			}
		}
	}
	return false
}
