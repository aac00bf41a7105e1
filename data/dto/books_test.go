package dto

import (
	"encoding/json"
	"testing"

	"github.com/emzola/bibliodesk/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateBookRequestBodyOmitsNilFields(t *testing.T) {
	title := "Dune"
	body := UpdateBookRequestBody{Title: &title}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Dune"}`, string(raw))
}

func TestUpdateBookRequestBodyApplyRecomputesAvailability(t *testing.T) {
	book := data.Book{ID: "b1", Title: "Dune", Copies: 3, Available: true}
	zero := 0
	got := UpdateBookRequestBody{Copies: &zero}.Apply(book)
	assert.Equal(t, 0, got.Copies)
	assert.False(t, got.Available)
	assert.Equal(t, "Dune", got.Title)
	// the input is untouched
	assert.Equal(t, 3, book.Copies)

	stale := data.Book{Copies: 2, Available: false}
	assert.True(t, UpdateBookRequestBody{}.Apply(stale).Available)
}

func TestCreateBookRequestBodyBook(t *testing.T) {
	b := CreateBookRequestBody{Title: "Dune", Author: "Herbert", ISBN: "1", Copies: 0}.Book()
	assert.False(t, b.Available)
}
