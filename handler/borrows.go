package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/emzola/bibliodesk/data"
	"github.com/emzola/bibliodesk/data/dto"
	"github.com/emzola/bibliodesk/internal/validator"
	"github.com/emzola/bibliodesk/service"
)

func (h *Handler) borrowBookFormHandler(w http.ResponseWriter, r *http.Request) {
	book, ok := h.loadBook(w, r)
	if !ok {
		return
	}
	td := h.newTemplateData(r)
	td.Book = book
	td.Borrow = borrowForm{Quantity: "1"}
	h.render(w, r, http.StatusOK, "borrow", td)
}

func (h *Handler) borrowBookHandler(w http.ResponseWriter, r *http.Request) {
	book, ok := h.loadBook(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	if err := r.ParseForm(); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	td := h.newTemplateData(r)
	td.Book = book
	td.Borrow = borrowForm{
		Quantity: strings.TrimSpace(r.PostForm.Get("quantity")),
		DueDate:  strings.TrimSpace(r.PostForm.Get("dueDate")),
	}
	quantity, err := strconv.Atoi(td.Borrow.Quantity)
	if err != nil || quantity < 1 {
		td.Errors["quantity"] = "must be at least 1"
		td.Flash = &Flash{Kind: "error", Message: "Invalid quantity"}
		h.render(w, r, http.StatusUnprocessableEntity, "borrow", td)
		return
	}

	_, err = h.service.BorrowBook(r.Context(), dto.BorrowRequestBody{
		Book:     book.ID,
		Quantity: quantity,
		DueDate:  td.Borrow.DueDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			td.Errors = service.FieldErrors(err)
			td.Flash = &Flash{Kind: "error", Message: borrowValidationMessage(td.Errors)}
			h.render(w, r, http.StatusUnprocessableEntity, "borrow", td)
		default:
			h.logError(r, err)
			message := serverMessage(err)
			if message == "" {
				message = "Failed to borrow book"
			}
			td.Flash = &Flash{Kind: "error", Message: message}
			h.render(w, r, http.StatusBadGateway, "borrow", td)
		}
		return
	}
	h.putFlash(r, "success", fmt.Sprintf("Borrowed %s of %q", pluralize(quantity, "copy", "copies"), book.Title))
	h.seeOther(w, r, "/borrow-summary")
}

func borrowValidationMessage(errs map[string]string) string {
	switch {
	case errs["quantity"] != "":
		return "Invalid quantity"
	case errs["dueDate"] != "":
		return "Please select a due date"
	default:
		return "Failed to borrow book"
	}
}

func (h *Handler) borrowSummaryHandler(w http.ResponseWriter, r *http.Request) {
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
	page, err := h.service.ListBorrowSummary(r.Context(), filters)
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
	td.Summary = page
	td.Events = "/events?" + url.Values{
		"query": []string{"summary"},
		"page":  []string{strconv.Itoa(page.Pagination.Page)},
		"limit": []string{strconv.Itoa(filters.Limit)},
	}.Encode()
	h.render(w, r, http.StatusOK, "summary", td)
}

func (h *Handler) exportBorrowSummaryHandler(w http.ResponseWriter, r *http.Request) {
	err := h.service.StartBorrowSummaryExport()
	switch {
	case err == nil:
		h.putFlash(r, "success", "Export started")
	case errors.Is(err, service.ErrExportDisabled):
		h.putFlash(r, "error", "Export is not configured")
	default:
		h.logError(r, err)
		h.putFlash(r, "error", "Export failed")
	}
	h.seeOther(w, r, "/borrow-summary")
}
