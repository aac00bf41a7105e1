package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/emzola/bibliodesk/data"
	"github.com/emzola/bibliodesk/data/dto"
	"github.com/emzola/bibliodesk/internal/validator"
	"github.com/emzola/bibliodesk/service"
)

func (h *Handler) homeHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", h.newTemplateData(r))
}

func (h *Handler) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	qs := r.URL.Query()
	filters := data.Filters{
		Page:  h.readInt(qs, "page", data.DefaultPage, v),
		Limit: h.readInt(qs, "limit", h.config.Pagination.Limit, v),
	}
	if !v.Valid() {
		h.badRequestResponse(w, r, errors.New(firstError(v.Errors)))
		return
	}
	page, err := h.service.ListBooks(r.Context(), filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.badRequestResponse(w, r, errors.New(firstError(service.FieldErrors(err))))
		case errors.Is(err, service.ErrNetwork), errors.Is(err, service.ErrServer):
			h.upstreamErrorResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	td := h.newTemplateData(r)
	td.Books = page
	td.Events = fmt.Sprintf("/events?query=books&page=%d&limit=%d", page.Pagination.Page, filters.Limit)
	h.render(w, r, http.StatusOK, "books", td)
}

func (h *Handler) showBookHandler(w http.ResponseWriter, r *http.Request) {
	book, ok := h.loadBook(w, r)
	if !ok {
		return
	}
	td := h.newTemplateData(r)
	td.Book = book
	h.render(w, r, http.StatusOK, "book", td)
}

func (h *Handler) createBookFormHandler(w http.ResponseWriter, r *http.Request) {
	td := h.newTemplateData(r)
	td.Form = bookForm{Copies: "1"}
	h.render(w, r, http.StatusOK, "create", td)
}

func (h *Handler) createBookHandler(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseBookForm(w, r)
	if !ok {
		return
	}
	td := h.newTemplateData(r)
	td.Form = form
	body := dto.CreateBookRequestBody{
		Title:       form.Title,
		Author:      form.Author,
		Genre:       data.Genre(form.Genre),
		ISBN:        form.ISBN,
		Description: form.Description,
	}
	copies, err := strconv.Atoi(form.Copies)
	if err != nil {
		td.Errors["copies"] = "must be a whole number"
		td.Flash = &Flash{Kind: "error", Message: "Please fill in all required fields"}
		h.render(w, r, http.StatusUnprocessableEntity, "create", td)
		return
	}
	body.Copies = copies

	_, err = h.service.CreateBook(r.Context(), body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			td.Errors = service.FieldErrors(err)
			td.Flash = &Flash{Kind: "error", Message: "Please fill in all required fields"}
			h.render(w, r, http.StatusUnprocessableEntity, "create", td)
		default:
			h.logError(r, err)
			td.Flash = &Flash{Kind: "error", Message: "Failed to add book. Try again!"}
			h.render(w, r, http.StatusBadGateway, "create", td)
		}
		return
	}
	h.putFlash(r, "success", "Book added successfully!")
	h.seeOther(w, r, "/books")
}

func (h *Handler) editBookFormHandler(w http.ResponseWriter, r *http.Request) {
	book, ok := h.loadBook(w, r)
	if !ok {
		return
	}
	td := h.newTemplateData(r)
	td.Book = book
	td.Form = bookFormFrom(book)
	h.render(w, r, http.StatusOK, "edit", td)
}

func (h *Handler) editBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.readIDParam(r)
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	form, ok := h.parseBookForm(w, r)
	if !ok {
		return
	}
	td := h.newTemplateData(r)
	td.Form = form
	td.Book = &data.Book{ID: id, Title: form.Title}
	genre := data.Genre(form.Genre)
	body := dto.UpdateBookRequestBody{
		Title:       &form.Title,
		Author:      &form.Author,
		Genre:       &genre,
		ISBN:        &form.ISBN,
		Description: &form.Description,
	}
	copies, err := strconv.Atoi(form.Copies)
	if err != nil {
		td.Errors["copies"] = "must be a whole number"
		td.Flash = &Flash{Kind: "error", Message: "Please fix the highlighted errors"}
		h.render(w, r, http.StatusUnprocessableEntity, "edit", td)
		return
	}
	body.Copies = &copies

	_, err = h.service.UpdateBook(r.Context(), id, body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			td.Errors = service.FieldErrors(err)
			td.Flash = &Flash{Kind: "error", Message: "Please fix the highlighted errors"}
			h.render(w, r, http.StatusUnprocessableEntity, "edit", td)
		default:
			h.logError(r, err)
			td.Flash = &Flash{Kind: "error", Message: "Failed to update book"}
			h.render(w, r, http.StatusBadGateway, "edit", td)
		}
		return
	}
	h.putFlash(r, "success", "Book updated successfully!")
	h.seeOther(w, r, "/books")
}

func (h *Handler) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.readIDParam(r)
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	target := "/books"
	if err := r.ParseForm(); err == nil {
		if page, err := strconv.Atoi(r.PostForm.Get("page")); err == nil && page > 1 {
			target = fmt.Sprintf("/books?page=%d", page)
		}
	}
	_, err = h.service.DeleteBook(r.Context(), id)
	if err != nil {
		h.logError(r, err)
		h.putFlash(r, "error", "Delete failed")
	} else {
		h.putFlash(r, "success", "Book deleted!")
	}
	h.seeOther(w, r, target)
}

// loadBook fetches the book named by the id parameter, writing a not found
// or error page when it cannot.
func (h *Handler) loadBook(w http.ResponseWriter, r *http.Request) (*data.Book, bool) {
	id, err := h.readIDParam(r)
	if err != nil {
		h.notFoundResponse(w, r)
		return nil, false
	}
	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNetwork), errors.Is(err, service.ErrServer):
			h.upstreamErrorResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return nil, false
	}
	return book, true
}

// parseBookForm reads the create and edit form fields.
func (h *Handler) parseBookForm(w http.ResponseWriter, r *http.Request) (bookForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	if err := r.ParseForm(); err != nil {
		h.badRequestResponse(w, r, err)
		return bookForm{}, false
	}
	return bookForm{
		Title:       strings.TrimSpace(r.PostForm.Get("title")),
		Author:      strings.TrimSpace(r.PostForm.Get("author")),
		Genre:       strings.TrimSpace(r.PostForm.Get("genre")),
		ISBN:        strings.TrimSpace(r.PostForm.Get("isbn")),
		Description: strings.TrimSpace(r.PostForm.Get("description")),
		Copies:      strings.TrimSpace(r.PostForm.Get("copies")),
	}, true
}

// firstError returns one message of an error map, preferring the smallest key.
func firstError(errs map[string]string) string {
	key := ""
	for k := range errs {
		if key == "" || k < key {
			key = k
		}
	}
	if key == "" {
		return "invalid request"
	}
	return key + " " + errs[key]
}
