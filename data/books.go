package data

import (
	"fmt"
	"strings"
	"time"

	"github.com/emzola/bibliodesk/internal/validator"
	"gopkg.in/yaml.v3"
)

// Genre is the closed set of catalog genres.
type Genre string

const (
	GenreFiction    Genre = "FICTION"
	GenreNonFiction Genre = "NON_FICTION"
	GenreScience    Genre = "SCIENCE"
	GenreHistory    Genre = "HISTORY"
	GenreBiography  Genre = "BIOGRAPHY"
	GenreFantasy    Genre = "FANTASY"
)

// Genres lists every genre in display order.
var Genres = []Genre{
	GenreFiction,
	GenreNonFiction,
	GenreScience,
	GenreHistory,
	GenreBiography,
	GenreFantasy,
}

// Valid reports whether g is one of Genres.
func (g Genre) Valid() bool {
	return validator.PermittedValue(g, Genres...)
}

// Label returns a display name, e.g. "Non Fiction".
func (g Genre) Label() string {
	words := strings.Split(strings.ToLower(string(g)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// ParseGenre accepts a genre in any letter case with spaces or underscores.
func ParseGenre(s string) (Genre, error) {
	g := Genre(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "_"))
	if !g.Valid() {
		return "", fmt.Errorf("unknown genre %q", s)
	}
	return g, nil
}

// Book defines a catalog record as served by the library API.
type Book struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Genre       Genre      `json:"genre"`
	ISBN        string     `json:"isbn"`
	Description string     `json:"description,omitempty"`
	Copies      int        `json:"copies"`
	Available   bool       `json:"available"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Availability derives the available flag from a copy count.
func Availability(copies int) bool {
	return copies > 0
}

// Borrowable reports whether at least one copy can be lent out.
func (b Book) Borrowable() bool {
	return Availability(b.Copies)
}

// ValidateNewBook checks the fields the create form requires.
func ValidateNewBook(v *validator.Validator, book *Book) {
	v.Check(strings.TrimSpace(book.Title) != "", "title", "must be provided")
	v.Check(len(book.Title) <= 500, "title", "must not be more than 500 bytes long")
	v.Check(strings.TrimSpace(book.Author) != "", "author", "must be provided")
	v.Check(strings.TrimSpace(book.ISBN) != "", "isbn", "must be provided")
	v.Check(len(book.ISBN) <= 17, "isbn", "must not be more than 17 characters")
	v.Check(book.Genre == "" || book.Genre.Valid(), "genre", "must be a known genre")
	v.Check(book.Copies >= 0, "copies", "must not be negative")
}

// ValidateEditedBook checks a book as it would look after an edit. The edit
// form requires every field.
func ValidateEditedBook(v *validator.Validator, book *Book) {
	v.Check(strings.TrimSpace(book.Title) != "", "title", "Title is required")
	v.Check(strings.TrimSpace(book.Author) != "", "author", "Author is required")
	v.Check(book.Genre != "", "genre", "Please select a genre")
	v.Check(book.Genre == "" || book.Genre.Valid(), "genre", "must be a known genre")
	v.Check(strings.TrimSpace(book.ISBN) != "", "isbn", "ISBN is required")
	v.Check(strings.TrimSpace(book.Description) != "", "description", "Description is required")
	v.Check(book.Copies >= 1, "copies", "Minimum 1 copy required")
}

// UnmarshalYAML accepts the loose spellings ParseGenre accepts and rejects
// unknown genres.
func (g *Genre) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*g = ""
		return nil
	}
	parsed, err := ParseGenre(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*g = parsed
	return nil
}
