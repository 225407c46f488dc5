package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrQueryRequired is returned when the body is missing or has no usable "query" field.
	ErrQueryRequired = errors.New("Query parameter is required")
	// ErrInvalidTopK is returned when "topK" is present but is not a positive integer.
	ErrInvalidTopK = errors.New("topK must be a positive integer")
)

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query string `json:"query"`
	// TopK is nil when the client did not send it (or sent null).
	TopK *int `json:"topK,omitempty"`
}

// QueryResponse is the success body of POST /api/query.
type QueryResponse struct {
	Query    string   `json:"query"`
	Contexts []string `json:"contexts"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status           string `json:"status"`
	VectorDBLoaded   bool   `json:"vector_db_loaded"`
	CurrentDirectory string `json:"current_directory"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecodeQueryRequest parses a raw request body. Fields are decoded one at a time so a bad
// topK is reported as such instead of as a missing query. A blank query counts as missing.
func DecodeQueryRequest(body []byte) (*QueryRequest, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrQueryRequired
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, ErrQueryRequired
	}

	rawQuery, ok := fields["query"]
	if !ok {
		return nil, ErrQueryRequired
	}
	var query string
	if err := json.Unmarshal(rawQuery, &query); err != nil || strings.TrimSpace(query) == "" {
		return nil, ErrQueryRequired
	}

	req := &QueryRequest{Query: query}
	if rawTopK, ok := fields["topK"]; ok && string(rawTopK) != "null" {
		var topK int
		if err := json.Unmarshal(rawTopK, &topK); err != nil || topK < 1 {
			return nil, ErrInvalidTopK
		}
		req.TopK = &topK
	}
	return req, nil
}
