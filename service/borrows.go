package service

import (
	"context"
	"fmt"

	"github.com/emzola/bibliodesk/cache"
	"github.com/emzola/bibliodesk/data"
	"github.com/emzola/bibliodesk/data/dto"
	"github.com/emzola/bibliodesk/internal/validator"
)

type borrows interface {
	BorrowBook(ctx context.Context, body dto.BorrowRequestBody) (string, error)
	ListBorrowSummary(ctx context.Context, filters data.Filters) (data.Page[data.BorrowSummaryEntry], error)
}

func (s *service) borrowSummaryQuery(f data.Filters) cache.QueryDef {
	return cache.QueryDef{
		Key:      fmt.Sprintf("getBorrowSummary(%d,%d)", f.Page, f.Limit),
		Provides: []cache.Tag{cache.TypeTag(TagBorrowSummary)},
		Fetch: func(ctx context.Context) (any, error) {
			return s.repo.ListBorrowSummary(ctx, f)
		},
	}
}

// BorrowBook service records a borrow. The local check runs against the
// cached book; the server may still reject the borrow.
func (s *service) BorrowBook(ctx context.Context, body dto.BorrowRequestBody) (string, error) {
	book, err := s.GetBook(ctx, body.Book)
	if err != nil {
		return "", err
	}
	v := validator.New()
	if data.ValidateBorrow(v, book, body.Quantity, body.DueDate); !v.Valid() {
		return "", failedValidation(v.Errors)
	}
	msg, err := s.repo.CreateBorrow(ctx, body)
	if err != nil {
		return "", mapRepoError(err)
	}
	s.store.Invalidate(ctx, cache.TypeTag(TagBooks), cache.TypeTag(TagBorrowSummary))
	return msg, nil
}

// ListBorrowSummary service retrieves a page of the borrow summary.
func (s *service) ListBorrowSummary(ctx context.Context, filters data.Filters) (data.Page[data.BorrowSummaryEntry], error) {
	filters, err := s.filters(filters)
	if err != nil {
		return data.Page[data.BorrowSummaryEntry]{}, err
	}
	return queryAs[data.Page[data.BorrowSummaryEntry]](ctx, s.store, s.borrowSummaryQuery(filters))
}
