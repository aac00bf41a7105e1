package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/emzola/bibliodesk/data"
	"github.com/emzola/bibliodesk/data/dto"
	"github.com/emzola/bibliodesk/internal/metrics"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type Repository interface {
	books
	borrows
}

// Repository defines the app's repository layer: a client of the library REST API.
type repository struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// New creates a new instance of Repository. A nil limiter disables pacing.
func New(client *http.Client, baseURL string, limiter *rate.Limiter) *repository {
	if client == nil {
		client = http.DefaultClient
	}
	return &repository{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: limiter,
	}
}

// endpoint joins path segments onto the base URL, escaping each segment.
func (r *repository) endpoint(query url.Values, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := r.baseURL + "/" + strings.Join(escaped, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func pageQuery(filters data.Filters) url.Values {
	return url.Values{
		"page":  []string{strconv.Itoa(filters.Page)},
		"limit": []string{strconv.Itoa(filters.Limit)},
	}
}

// doJSON sends one request and decodes the response envelope.
func doJSON[T any](ctx context.Context, r *repository, op, method, target string, body any) (dto.Envelope[T], error) {
	var env dto.Envelope[T]
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return env, &NetworkError{Op: op, Err: err}
		}
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return env, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return env, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := r.client.Do(req)
	if err != nil {
		metrics.APIRequests.WithLabelValues(method, "network_error").Inc()
		return env, &NetworkError{Op: op, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		metrics.APIRequests.WithLabelValues(method, "network_error").Inc()
		return env, &NetworkError{Op: op, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		metrics.APIRequests.WithLabelValues(method, strconv.Itoa(res.StatusCode)).Inc()
		if res.StatusCode == http.StatusNotFound {
			return env, ErrRecordNotFound
		}
		return env, &ServerError{Op: op, StatusCode: res.StatusCode, Message: serverMessage(raw)}
	}
	metrics.APIRequests.WithLabelValues(method, "ok").Inc()
	if len(bytes.TrimSpace(raw)) == 0 {
		env.Success = true
		return env, nil
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxError), errors.As(err, &unmarshalTypeError):
			return env, &ServerError{Op: op, StatusCode: res.StatusCode, Message: "malformed response body"}
		default:
			return env, fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	if !env.Success {
		return env, &ServerError{Op: op, StatusCode: res.StatusCode, Message: env.Message, Rejected: true}
	}
	return env, nil
}

// serverMessage extracts the message field of an error envelope, falling
// back to the raw body text.
func serverMessage(raw []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// page converts a list envelope to a Page. A response without pagination
// metadata is treated as a single page holding every item.
func page[T any](env dto.Envelope[[]T], filters data.Filters) data.Page[T] {
	p := data.Page[T]{Items: env.Data}
	if p.Items == nil {
		p.Items = []T{}
	}
	if env.Pagination != nil {
		p.Pagination = *env.Pagination
	} else {
		p.Pagination = data.Pagination{Total: len(p.Items), Page: filters.Page, Limit: filters.Limit, TotalPages: 1}
	}
	return p
}
