package data

import "github.com/emzola/bibliodesk/internal/validator"

// Default page parameters used when a request leaves them out.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Filters holds the page parameters of a list request.
type Filters struct {
	Page  int
	Limit int
}

// WithDefaults fills in missing page parameters.
func (f Filters) WithDefaults() Filters {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	return f
}

// ValidateFilters checks page parameters.
func ValidateFilters(v *validator.Validator, f Filters) {
	v.Check(f.Page > 0, "page", "must be greater than zero")
	v.Check(f.Page <= 10_000_000, "page", "must be a maximum of 10 million")
	v.Check(f.Limit > 0, "limit", "must be greater than zero")
	v.Check(f.Limit <= MaxLimit, "limit", "must be a maximum of 100")
}

// Pagination is the page metadata of a list response.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// HasPrevious reports whether a page precedes this one.
func (p Pagination) HasPrevious() bool {
	return p.Page > 1
}

// HasNext reports whether a page follows this one.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// PreviousPage returns the previous page number.
func (p Pagination) PreviousPage() int {
	if p.Page <= 1 {
		return 1
	}
	return p.Page - 1
}

// NextPage returns the next page number.
func (p Pagination) NextPage() int {
	return p.Page + 1
}

// Page is one page of a list response.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}
