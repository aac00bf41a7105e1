package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/emzola/bibliodesk/repository"
)

var (
	ErrFailedValidation     = errors.New("failed validation")
	ErrRecordNotFound       = errors.New("record not found")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrExportDisabled       = errors.New("borrow summary export is not configured")

	// ErrNetwork and ErrServer match the repository's transport errors.
	ErrNetwork = repository.ErrNetwork
	ErrServer  = repository.ErrServer
)

// ValidationError carries the field errors of a rejected form.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%q %s", k, e.Errors[k])
	}
	return "failed validation: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrFailedValidation }

// failedValidation wraps a validator's error map.
func failedValidation(errorMap map[string]string) error {
	return &ValidationError{Errors: errorMap}
}

// FieldErrors returns the field errors of err, or nil when err is not a
// validation error.
func FieldErrors(err error) map[string]string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Errors
	}
	return nil
}

// mapRepoError converts repository errors to service errors.
func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrRecordNotFound):
		return ErrRecordNotFound
	default:
		return err
	}
}
