package models

// ErrorResponse is the JSON error body the proxy and the pricing API share.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
