package repository

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrNetwork        = errors.New("network error")
	ErrServer         = errors.New("server error")
)

// NetworkError reports a request that never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ServerError reports a non-2xx response, or a 2xx response whose envelope
// has success set to false.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
	// Rejected is set when a 2xx envelope carried success false.
	Rejected bool
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server responded %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: server responded %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *ServerError) Is(target error) bool { return target == ErrServer }
