package service

import (
	"context"
	"fmt"

	"github.com/emzola/bibliodesk/cache"
	"github.com/emzola/bibliodesk/data"
	"github.com/emzola/bibliodesk/internal/validator"
)

// Cache tag types.
const (
	TagBooks         = "Books"
	TagBorrowSummary = "BorrowSummary"
)

// background runs fn in a goroutine tracked by the shared WaitGroup.
func (s *service) background(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				s.logger.PrintError(fmt.Errorf("%s", err), nil)
			}
		}()
		fn()
	}()
}

// queryAs runs a cached query and asserts the type of its data.
func queryAs[T any](ctx context.Context, store *cache.Store, def cache.QueryDef) (T, error) {
	var zero T
	v, err := store.Query(ctx, def)
	if err != nil {
		return zero, mapRepoError(err)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: unexpected data type %T", def.Key, v)
	}
	return t, nil
}

// filters applies defaults and validates page parameters.
func (s *service) filters(f data.Filters) (data.Filters, error) {
	if f.Limit < 1 {
		f.Limit = s.config.Pagination.Limit
	}
	f = f.WithDefaults()
	v := validator.New()
	if data.ValidateFilters(v, f); !v.Valid() {
		return f, failedValidation(v.Errors)
	}
	return f, nil
}
