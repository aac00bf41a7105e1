package data

import (
	"fmt"
	"time"

	"github.com/emzola/bibliodesk/internal/validator"
)

// DueDateLayout is the wire format of a borrow due date.
const DueDateLayout = "2006-01-02"

// BookRef is the slice of a book embedded in a summary entry.
type BookRef struct {
	Title string `json:"title"`
	ISBN  string `json:"isbn"`
}

// BorrowSummaryEntry is the server-side aggregate of quantity borrowed per book.
type BorrowSummaryEntry struct {
	Book          *BookRef `json:"book"`
	TotalQuantity int      `json:"totalQuantity"`
}

// Title returns the book title or "N/A" when the book is gone.
func (e BorrowSummaryEntry) Title() string {
	if e.Book == nil || e.Book.Title == "" {
		return "N/A"
	}
	return e.Book.Title
}

// ISBN returns the book ISBN or "N/A" when the book is gone.
func (e BorrowSummaryEntry) ISBN() string {
	if e.Book == nil || e.Book.ISBN == "" {
		return "N/A"
	}
	return e.Book.ISBN
}

// ValidateBorrow is the pre-submit check for a borrow. The server may still
// reject a borrow that passes it.
func ValidateBorrow(v *validator.Validator, book *Book, quantity int, dueDate string) {
	v.Check(book.Borrowable(), "book", "no copies available")
	v.Check(quantity >= 1, "quantity", "must be at least 1")
	v.Check(quantity <= book.Copies, "quantity", fmt.Sprintf("must not exceed available copies (%d)", book.Copies))
	v.Check(dueDate != "", "dueDate", "must be provided")
	if dueDate != "" {
		_, err := time.Parse(DueDateLayout, dueDate)
		v.Check(validator.Matches(dueDate, validator.DateRX) && err == nil, "dueDate", "must be a date in YYYY-MM-DD format")
	}
}
