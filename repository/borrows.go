package repository

import (
	"context"
	"net/http"

	"github.com/emzola/bibliodesk/data"
	"github.com/emzola/bibliodesk/data/dto"
)

type borrows interface {
	CreateBorrow(ctx context.Context, body dto.BorrowRequestBody) (string, error)
	ListBorrowSummary(ctx context.Context, filters data.Filters) (data.Page[data.BorrowSummaryEntry], error)
}

// CreateBorrow records a borrow transaction. The server decrements the
// book's copies and may reject the borrow.
func (r *repository) CreateBorrow(ctx context.Context, body dto.BorrowRequestBody) (string, error) {
	env, err := doJSON[any](ctx, r, "create borrow", http.MethodPost, r.endpoint(nil, "borrow"), body)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// ListBorrowSummary retrieves one page of the per-book borrow aggregate.
func (r *repository) ListBorrowSummary(ctx context.Context, filters data.Filters) (data.Page[data.BorrowSummaryEntry], error) {
	env, err := doJSON[[]data.BorrowSummaryEntry](ctx, r, "list borrow summary", http.MethodGet, r.endpoint(pageQuery(filters), "borrow"), nil)
	if err != nil {
		return data.Page[data.BorrowSummaryEntry]{}, err
	}
	return page(env, filters), nil
}
