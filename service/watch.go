package service

import (
	"context"

	"github.com/emzola/bibliodesk/cache"
	"github.com/emzola/bibliodesk/data"
)

type watches interface {
	WatchBooks(ctx context.Context, filters data.Filters, fn cache.Listener) (func(), error)
	WatchBorrowSummary(ctx context.Context, filters data.Filters, fn cache.Listener) (func(), error)
}

// WatchBooks subscribes fn to a page of books. The subscription keeps the
// page live: invalidating Books refetches it and notifies fn.
func (s *service) WatchBooks(ctx context.Context, filters data.Filters, fn cache.Listener) (func(), error) {
	filters, err := s.filters(filters)
	if err != nil {
		return nil, err
	}
	return s.store.Subscribe(ctx, s.booksQuery(filters), fn), nil
}

// WatchBorrowSummary subscribes fn to a page of the borrow summary.
func (s *service) WatchBorrowSummary(ctx context.Context, filters data.Filters, fn cache.Listener) (func(), error) {
	filters, err := s.filters(filters)
	if err != nil {
		return nil, err
	}
	return s.store.Subscribe(ctx, s.borrowSummaryQuery(filters), fn), nil
}
