package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(h.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(h.methodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/", h.homeHandler)

	router.HandlerFunc(http.MethodGet, "/books", h.listBooksHandler)
	router.HandlerFunc(http.MethodGet, "/books/:id", h.showBookHandler)
	router.HandlerFunc(http.MethodPost, "/books/:id/delete", h.deleteBookHandler)
	router.HandlerFunc(http.MethodGet, "/books/:id/borrow", h.borrowBookFormHandler)
	router.HandlerFunc(http.MethodPost, "/books/:id/borrow", h.borrowBookHandler)

	router.HandlerFunc(http.MethodGet, "/create-book", h.createBookFormHandler)
	router.HandlerFunc(http.MethodPost, "/create-book", h.createBookHandler)
	router.HandlerFunc(http.MethodGet, "/edit-book/:id", h.editBookFormHandler)
	router.HandlerFunc(http.MethodPost, "/edit-book/:id", h.editBookHandler)

	router.HandlerFunc(http.MethodGet, "/borrow-summary", h.borrowSummaryHandler)
	router.HandlerFunc(http.MethodPost, "/borrow-summary/export", h.exportBorrowSummaryHandler)

	router.HandlerFunc(http.MethodGet, "/events", h.eventsHandler)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", h.healthcheckHandler)
	if h.config.Metrics.Enabled {
		router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	}

	return h.recoverPanic(h.metrics(h.rateLimit(h.session(router))))
}
