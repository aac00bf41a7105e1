package data

import (
	"testing"

	"github.com/emzola/bibliodesk/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseGenre(t *testing.T) {
	tests := []struct {
		in      string
		want    Genre
		wantErr bool
	}{
		{in: "FICTION", want: GenreFiction},
		{in: "non fiction", want: GenreNonFiction},
		{in: " Science ", want: GenreScience},
		{in: "poetry", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGenre(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenreLabel(t *testing.T) {
	assert.Equal(t, "Non Fiction", GenreNonFiction.Label())
	assert.Equal(t, "Fantasy", GenreFantasy.Label())
}

func TestGenreUnmarshalYAML(t *testing.T) {
	var doc struct {
		Genre Genre `yaml:"genre"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("genre: non fiction\n"), &doc))
	assert.Equal(t, GenreNonFiction, doc.Genre)

	err := yaml.Unmarshal([]byte("genre: cookbooks\n"), &doc)
	assert.Error(t, err)
}

func TestValidateNewBook(t *testing.T) {
	v := validator.New()
	ValidateNewBook(v, &Book{Title: "Dune", Author: "Frank Herbert", ISBN: "978-0441013593", Copies: 0})
	assert.True(t, v.Valid())

	v = validator.New()
	ValidateNewBook(v, &Book{Genre: "POETRY", Copies: -1})
	assert.False(t, v.Valid())
	for _, key := range []string{"title", "author", "isbn", "genre", "copies"} {
		assert.Contains(t, v.Errors, key)
	}
}

func TestValidateEditedBook(t *testing.T) {
	book := Book{
		Title:       "Dune",
		Author:      "Frank Herbert",
		Genre:       GenreFiction,
		ISBN:        "978-0441013593",
		Description: "Spice.",
		Copies:      1,
	}
	v := validator.New()
	ValidateEditedBook(v, &book)
	assert.True(t, v.Valid())

	book.Copies = 0
	book.Description = " "
	v = validator.New()
	ValidateEditedBook(v, &book)
	assert.Equal(t, "Minimum 1 copy required", v.Errors["copies"])
	assert.Equal(t, "Description is required", v.Errors["description"])
}

func TestValidateBorrow(t *testing.T) {
	book := &Book{Copies: 3}

	v := validator.New()
	ValidateBorrow(v, book, 3, "2030-01-31")
	assert.True(t, v.Valid())

	v = validator.New()
	ValidateBorrow(v, book, 4, "2030-01-31")
	assert.Contains(t, v.Errors, "quantity")

	v = validator.New()
	ValidateBorrow(v, book, 0, "")
	assert.Contains(t, v.Errors, "quantity")
	assert.Contains(t, v.Errors, "dueDate")

	v = validator.New()
	ValidateBorrow(v, book, 1, "31/01/2030")
	assert.Contains(t, v.Errors, "dueDate")

	v = validator.New()
	ValidateBorrow(v, &Book{Copies: 0}, 1, "2030-01-31")
	assert.Contains(t, v.Errors, "book")
}

func TestPagination(t *testing.T) {
	p := Pagination{Total: 25, Page: 1, Limit: 10, TotalPages: 3}
	assert.False(t, p.HasPrevious())
	assert.True(t, p.HasNext())

	p.Page = 3
	assert.True(t, p.HasPrevious())
	assert.False(t, p.HasNext())
	assert.Equal(t, 2, p.PreviousPage())

	empty := Pagination{Page: 1, Limit: 10}
	assert.False(t, empty.HasNext())
}

func TestFiltersWithDefaults(t *testing.T) {
	f := Filters{}.WithDefaults()
	assert.Equal(t, Filters{Page: 1, Limit: 10}, f)
	assert.Equal(t, Filters{Page: 4, Limit: 5}, Filters{Page: 4, Limit: 5}.WithDefaults())

	v := validator.New()
	ValidateFilters(v, Filters{Page: 1, Limit: 101})
	assert.Contains(t, v.Errors, "limit")
}

func TestSummaryEntryFallbacks(t *testing.T) {
	e := BorrowSummaryEntry{TotalQuantity: 2}
	assert.Equal(t, "N/A", e.Title())
	assert.Equal(t, "N/A", e.ISBN())
	e.Book = &BookRef{Title: "Dune", ISBN: "1"}
	assert.Equal(t, "Dune", e.Title())
}
