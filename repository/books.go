package repository

import (
	"context"
	"errors"
	"net/http"

	"github.com/emzola/bibliodesk/data"
	"github.com/emzola/bibliodesk/data/dto"
)

type books interface {
	ListBooks(ctx context.Context, filters data.Filters) (data.Page[data.Book], error)
	GetBook(ctx context.Context, id string) (*data.Book, error)
	CreateBook(ctx context.Context, body dto.CreateBookRequestBody) (*data.Book, error)
	UpdateBook(ctx context.Context, id string, body dto.UpdateBookRequestBody) (*data.Book, error)
	DeleteBook(ctx context.Context, id string) (string, error)
}

// ListBooks retrieves one page of book records.
func (r *repository) ListBooks(ctx context.Context, filters data.Filters) (data.Page[data.Book], error) {
	env, err := doJSON[[]data.Book](ctx, r, "list books", http.MethodGet, r.endpoint(pageQuery(filters), "books"), nil)
	if err != nil {
		return data.Page[data.Book]{}, err
	}
	return page(env, filters), nil
}

// GetBook retrieves a book record by its ID.
func (r *repository) GetBook(ctx context.Context, id string) (*data.Book, error) {
	if id == "" {
		return nil, ErrRecordNotFound
	}
	env, err := doJSON[*data.Book](ctx, r, "get book", http.MethodGet, r.endpoint(nil, "books", id), nil)
	if err != nil {
		var serverErr *ServerError
		if errors.As(err, &serverErr) && serverErr.Rejected && env.Data == nil {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	if env.Data == nil {
		return nil, ErrRecordNotFound
	}
	return env.Data, nil
}

// CreateBook creates a new book record.
func (r *repository) CreateBook(ctx context.Context, body dto.CreateBookRequestBody) (*data.Book, error) {
	env, err := doJSON[*data.Book](ctx, r, "create book", http.MethodPost, r.endpoint(nil, "books"), body)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// UpdateBook applies a partial update to a book record.
func (r *repository) UpdateBook(ctx context.Context, id string, body dto.UpdateBookRequestBody) (*data.Book, error) {
	if id == "" {
		return nil, ErrRecordNotFound
	}
	env, err := doJSON[*data.Book](ctx, r, "update book", http.MethodPut, r.endpoint(nil, "books", id), body)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// DeleteBook deletes a book record and returns the server's message.
func (r *repository) DeleteBook(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrRecordNotFound
	}
	env, err := doJSON[any](ctx, r, "delete book", http.MethodDelete, r.endpoint(nil, "books", id), nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
