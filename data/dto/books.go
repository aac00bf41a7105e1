package dto

import "github.com/emzola/bibliodesk/data"

// CreateBookRequestBody defines the request body for CreateBook service.
type CreateBookRequestBody struct {
	Title       string     `json:"title" yaml:"title"`
	Author      string     `json:"author" yaml:"author"`
	Genre       data.Genre `json:"genre,omitempty" yaml:"genre"`
	ISBN        string     `json:"isbn" yaml:"isbn"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Copies      int        `json:"copies" yaml:"copies"`
	Available   bool       `json:"available" yaml:"-"`
}

// Book returns the record the body would create, for validation.
func (b CreateBookRequestBody) Book() data.Book {
	return data.Book{
		Title:       b.Title,
		Author:      b.Author,
		Genre:       b.Genre,
		ISBN:        b.ISBN,
		Description: b.Description,
		Copies:      b.Copies,
		Available:   data.Availability(b.Copies),
	}
}

// UpdateBookRequestBody defines the request body for UpdateBook service. The fields are set
// to a pointer type to allow partial updates based on whether the value is set to nil.
type UpdateBookRequestBody struct {
	Title       *string     `json:"title,omitempty"`
	Author      *string     `json:"author,omitempty"`
	Genre       *data.Genre `json:"genre,omitempty"`
	ISBN        *string     `json:"isbn,omitempty"`
	Description *string     `json:"description,omitempty"`
	Copies      *int        `json:"copies,omitempty"`
	Available   *bool       `json:"available,omitempty"`
}

// Apply returns a copy of book with the non-nil fields of the body applied.
func (b UpdateBookRequestBody) Apply(book data.Book) data.Book {
	if b.Title != nil {
		book.Title = *b.Title
	}
	if b.Author != nil {
		book.Author = *b.Author
	}
	if b.Genre != nil {
		book.Genre = *b.Genre
	}
	if b.ISBN != nil {
		book.ISBN = *b.ISBN
	}
	if b.Description != nil {
		book.Description = *b.Description
	}
	if b.Copies != nil {
		book.Copies = *b.Copies
	}
	book.Available = data.Availability(book.Copies)
	return book
}

// Catalog is the YAML document accepted by ImportBooks.
type Catalog struct {
	Books []CreateBookRequestBody `yaml:"books"`
}

// ImportResult reports the outcome of one catalog record.
type ImportResult struct {
	Line  int
	Title string
	Book  *data.Book
	Err   error
}
