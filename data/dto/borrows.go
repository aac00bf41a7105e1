package dto

// BorrowRequestBody defines the request body for BorrowBook service.
type BorrowRequestBody struct {
	Book     string `json:"book"`
	Quantity int    `json:"quantity"`
	DueDate  string `json:"dueDate"`
}
