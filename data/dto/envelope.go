package dto

import "github.com/emzola/bibliodesk/data"

// Envelope is the response wrapper of every library API endpoint.
type Envelope[T any] struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Data       T                `json:"data"`
	Pagination *data.Pagination `json:"pagination,omitempty"`
}
