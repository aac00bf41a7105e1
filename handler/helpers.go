package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/emzola/bibliodesk/internal/validator"
	"github.com/emzola/bibliodesk/repository"
	"github.com/jellydator/ttlcache/v3"
	"github.com/julienschmidt/httprouter"
)

type envelope map[string]interface{}

// readIDParam pulls the url id parameter from the request.
func (h *Handler) readIDParam(r *http.Request) (string, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id := strings.TrimSpace(params.ByName("id"))
	if id == "" {
		return "", errors.New("missing id parameter")
	}
	return id, nil
}

// readInt reads an integer from the query string, records a validation
// error when it cannot be parsed and falls back to defaultValue.
func (h *Handler) readInt(qs url.Values, key string, defaultValue int, v *validator.Validator) int {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		v.AddError(key, "must be an integer value")
		return defaultValue
	}
	return i
}

// encodeJSON serializes data to JSON and writes the appropriate HTTP status code and headers if necessary.
func (h *Handler) encodeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')
	for k, v := range headers {
		w.Header()[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// putFlash queues a notification for the session's next page.
func (h *Handler) putFlash(r *http.Request, kind, message string) {
	if id := h.contextGetSession(r); id != "" {
		h.flashes.Set(id, Flash{Kind: kind, Message: message}, ttlcache.DefaultTTL)
	}
}

// popFlash returns and clears the session's pending notification.
func (h *Handler) popFlash(r *http.Request) *Flash {
	id := h.contextGetSession(r)
	if id == "" {
		return nil
	}
	item := h.flashes.Get(id)
	if item == nil {
		return nil
	}
	h.flashes.Delete(id)
	f := item.Value()
	return &f
}

// seeOther redirects after a form post.
func (h *Handler) seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// serverMessage returns the library service's rejection message, if any.
func serverMessage(err error) string {
	var serverErr *repository.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	return ""
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
