package model

// PresignRequest is the JSON body clients send to request an upload link.
type PresignRequest struct {
	File string `json:"file"`
}

// PresignResponse carries the time-limited write URL back to the client.
type PresignResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the generic error body shared by all HTTP handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}
