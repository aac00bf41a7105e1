package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emzola/bibliodesk/data"
	"github.com/emzola/bibliodesk/data/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, h http.HandlerFunc) *repository {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.Client(), srv.URL+"/api/", nil)
}

func TestListBooks(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/books", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		io.WriteString(w, `{"success":true,"data":[{"_id":"b1","title":"Dune","copies":2,"available":true}],
			"pagination":{"total":11,"page":2,"limit":10,"totalPages":2}}`)
	})

	page, err := repo.ListBooks(context.Background(), data.Filters{Page: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b1", page.Items[0].ID)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNext())
	assert.True(t, page.Pagination.HasPrevious())
}

func TestGetBookKeepsServerGenre(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":{"_id":"b1","title":"Dune","genre":"POETRY","copies":1}}`)
	})
	book, err := repo.GetBook(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, data.Genre("POETRY"), book.Genre)
	assert.False(t, book.Genre.Valid())
}

func TestListBooksWithoutPagination(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":[{"_id":"a"},{"_id":"b"}]}`)
	})
	page, err := repo.ListBooks(context.Background(), data.Filters{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, data.Pagination{Total: 2, Page: 1, Limit: 10, TotalPages: 1}, page.Pagination)
}

func TestGetBookEscapesID(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books/a%2Fb", r.URL.EscapedPath())
		io.WriteString(w, `{"success":true,"data":{"_id":"a/b","title":"Dune"}}`)
	})
	book, err := repo.GetBook(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
}

func TestGetBookNotFound(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/books/missing":
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"success":false,"message":"Book not found"}`)
		case "/api/books/deleted":
			io.WriteString(w, `{"success":false,"message":"Book not found","data":null}`)
		default:
			io.WriteString(w, `{"success":true,"data":null}`)
		}
	})
	_, err := repo.GetBook(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = repo.GetBook(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = repo.GetBook(context.Background(), "deleted")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.NotErrorIs(t, err, ErrServer)

	_, err = repo.GetBook(context.Background(), "")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCreateBookSendsBody(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Dune", body["title"])
		assert.Equal(t, false, body["available"])
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"success":true,"message":"Book created","data":{"_id":"new","title":"Dune"}}`)
	})
	book, err := repo.CreateBook(context.Background(), dto.CreateBookRequestBody{Title: "Dune", Copies: 0})
	require.NoError(t, err)
	assert.Equal(t, "new", book.ID)
}

func TestUpdateBookSendsOnlySetFields(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"copies":4,"available":true}`, string(raw))
		io.WriteString(w, `{"success":true,"data":{"_id":"b1","copies":4,"available":true}}`)
	})
	copies, available := 4, true
	book, err := repo.UpdateBook(context.Background(), "b1", dto.UpdateBookRequestBody{Copies: &copies, Available: &available})
	require.NoError(t, err)
	assert.Equal(t, 4, book.Copies)
}

func TestDeleteBookReturnsMessage(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		io.WriteString(w, `{"success":true,"message":"Book deleted"}`)
	})
	msg, err := repo.DeleteBook(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "Book deleted", msg)
}

func TestCreateBorrowServerRejection(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/borrow", r.URL.Path)
		var body dto.BorrowRequestBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, dto.BorrowRequestBody{Book: "b1", Quantity: 5, DueDate: "2030-01-31"}, body)
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"success":false,"message":"Not enough copies available"}`)
	})
	_, err := repo.CreateBorrow(context.Background(), dto.BorrowRequestBody{Book: "b1", Quantity: 5, DueDate: "2030-01-31"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServer)
	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, http.StatusBadRequest, serverErr.StatusCode)
	assert.Equal(t, "Not enough copies available", serverErr.Message)
}

func TestSuccessFalseIsServerError(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"message":"nope","data":[]}`)
	})
	_, err := repo.ListBorrowSummary(context.Background(), data.Filters{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, ErrServer)
}

func TestListBorrowSummary(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/borrow", r.URL.Path)
		io.WriteString(w, `{"success":true,"data":[{"book":{"title":"Dune","isbn":"1"},"totalQuantity":3},{"book":null,"totalQuantity":1}],
			"pagination":{"total":2,"page":1,"limit":10,"totalPages":1}}`)
	})
	page, err := repo.ListBorrowSummary(context.Background(), data.Filters{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Dune", page.Items[0].Title())
	assert.Equal(t, 3, page.Items[0].TotalQuantity)
	assert.Equal(t, "N/A", page.Items[1].Title())
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	repo := New(nil, srv.URL, nil)
	_, err := repo.ListBooks(context.Background(), data.Filters{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, ErrNetwork)
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestMalformedBodyIsServerError(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>oops</html>`)
	})
	_, err := repo.GetBook(context.Background(), "b1")
	assert.ErrorIs(t, err, ErrServer)
}
