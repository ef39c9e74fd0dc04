package server

// GenerateRequest is the payload for POST /v1/templates.
type GenerateRequest struct {
	Goal     string `json:"goal"`
	Database string `json:"database"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
