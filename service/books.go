package service

import (
	"context"
	"fmt"

	"github.com/emzola/bibliodesk/cache"
	"github.com/emzola/bibliodesk/data"
	"github.com/emzola/bibliodesk/data/dto"
	"github.com/emzola/bibliodesk/internal/validator"
)

type books interface {
	ListBooks(ctx context.Context, filters data.Filters) (data.Page[data.Book], error)
	GetBook(ctx context.Context, id string) (*data.Book, error)
	CreateBook(ctx context.Context, body dto.CreateBookRequestBody) (*data.Book, error)
	UpdateBook(ctx context.Context, id string, body dto.UpdateBookRequestBody) (*data.Book, error)
	DeleteBook(ctx context.Context, id string) (string, error)
}

func (s *service) booksQuery(f data.Filters) cache.QueryDef {
	return cache.QueryDef{
		Key:      fmt.Sprintf("getBooks(%d,%d)", f.Page, f.Limit),
		Provides: []cache.Tag{cache.TypeTag(TagBooks)},
		Fetch: func(ctx context.Context) (any, error) {
			return s.repo.ListBooks(ctx, f)
		},
	}
}

func (s *service) bookQuery(id string) cache.QueryDef {
	return cache.QueryDef{
		Key:      fmt.Sprintf("getBookById(%s)", id),
		Provides: []cache.Tag{cache.IDTag(TagBooks, id)},
		Fetch: func(ctx context.Context) (any, error) {
			book, err := s.repo.GetBook(ctx, id)
			if err != nil {
				return nil, err
			}
			return *book, nil
		},
	}
}

// ListBooks service retrieves a page of books.
func (s *service) ListBooks(ctx context.Context, filters data.Filters) (data.Page[data.Book], error) {
	filters, err := s.filters(filters)
	if err != nil {
		return data.Page[data.Book]{}, err
	}
	return queryAs[data.Page[data.Book]](ctx, s.store, s.booksQuery(filters))
}

// GetBook service retrieves the details of a book.
func (s *service) GetBook(ctx context.Context, id string) (*data.Book, error) {
	if id == "" {
		return nil, ErrRecordNotFound
	}
	book, err := queryAs[data.Book](ctx, s.store, s.bookQuery(id))
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook service creates a new book.
func (s *service) CreateBook(ctx context.Context, body dto.CreateBookRequestBody) (*data.Book, error) {
	book := body.Book()
	v := validator.New()
	if data.ValidateNewBook(v, &book); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	body.Available = data.Availability(body.Copies)
	created, err := s.repo.CreateBook(ctx, body)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.store.Invalidate(ctx, cache.TypeTag(TagBooks))
	return created, nil
}

// UpdateBook service updates the details of a specific book.
func (s *service) UpdateBook(ctx context.Context, id string, body dto.UpdateBookRequestBody) (*data.Book, error) {
	// Retrieve the book by its ID
	current, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	book := body.Apply(*current)
	v := validator.New()
	if data.ValidateEditedBook(v, &book); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	body.Available = &book.Available
	updated, err := s.repo.UpdateBook(ctx, id, body)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.store.Invalidate(ctx, cache.TypeTag(TagBooks))
	return updated, nil
}

// DeleteBook service deletes a specific book and returns the server's message.
func (s *service) DeleteBook(ctx context.Context, id string) (string, error) {
	msg, err := s.repo.DeleteBook(ctx, id)
	if err != nil {
		return "", mapRepoError(err)
	}
	s.store.Invalidate(ctx, cache.TypeTag(TagBooks))
	return msg, nil
}
