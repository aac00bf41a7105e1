package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/emzola/bibliodesk/cache"
	"github.com/emzola/bibliodesk/data"
	"github.com/emzola/bibliodesk/internal/validator"
	"github.com/emzola/bibliodesk/service"
)

const eventsPingInterval = 15 * time.Second

// eventsHandler streams a live subscription to one listing page as
// server-sent events. A refresh event is sent whenever the subscribed query
// lands new data, e.g. after a mutation invalidated it.
func (h *Handler) eventsHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	qs := r.URL.Query()
	query := qs.Get("query")
	filters := data.Filters{
		Page:  h.readInt(qs, "page", data.DefaultPage, v),
		Limit: h.readInt(qs, "limit", h.config.Pagination.Limit, v),
	}
	v.Check(validator.PermittedValue(query, "books", "summary"), "query", "must be books or summary")
	if !v.Valid() {
		h.badRequestResponse(w, r, errors.New(firstError(v.Errors)))
		return
	}

	rc := http.NewResponseController(w)
	// The server write timeout would otherwise cut the stream.
	rc.SetWriteDeadline(time.Time{})

	connected := time.Now()
	refresh := make(chan string, 1)
	listener := func(snap cache.Snapshot) {
		if snap.Status != cache.StatusSuccess || !snap.UpdatedAt.After(connected) {
			return
		}
		select {
		case refresh <- snap.Key:
		default:
		}
	}

	var unsubscribe func()
	var err error
	switch query {
	case "books":
		unsubscribe, err = h.service.WatchBooks(r.Context(), filters, listener)
	default:
		unsubscribe, err = h.service.WatchBorrowSummary(r.Context(), filters, listener)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.badRequestResponse(w, r, errors.New(firstError(service.FieldErrors(err))))
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		h.logError(r, err)
		return
	}

	ticker := time.NewTicker(eventsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case key := <-refresh:
			fmt.Fprintf(w, "event: refresh\ndata: %s\n\n", key)
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
