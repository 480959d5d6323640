package models

// Page is the backend's paginated list envelope.
type Page[T any] struct {
	Data        []T `json:"data"`
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	CurrentPage int `json:"currentPage"`
}

// Envelope wraps single-resource responses.
type Envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// PageQuery is sent with every list request.
type PageQuery struct {
	Page  int
	Limit int
}
