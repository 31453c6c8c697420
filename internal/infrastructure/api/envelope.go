package api

import (
	"bytes"
	"encoding/json"
)

// envelope is the wrapped response form some backend endpoints produce:
// a logical status code and message around the actual payload. Endpoints
// that return bare payloads (the auth endpoints, for one) skip it entirely,
// so its presence is detected per response.
type envelope struct {
	Code    *int            `json:"code"`
	Msg     string          `json:"msg"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`

	// Pagination fields, present on list endpoints only.
	Total *int `json:"total"`
	Page  int  `json:"page"`
	Size  int  `json:"size"`
	Pages int  `json:"pages"`
}

// Meta carries pagination info from wrapped list responses.
type Meta struct {
	Total int
	Page  int
	Size  int
	Pages int
}

// parseEnvelope reports whether the body is a wrapped response. The marker is
// a top-level "code" field, same convention the browser client used.
func parseEnvelope(body []byte) (*envelope, bool) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || env.Code == nil {
		return nil, false
	}
	return &env, true
}

// message returns the embedded failure message, preferring the short form.
func (e *envelope) message() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

// meta returns pagination info, or nil for non-paginated envelopes.
func (e *envelope) meta() *Meta {
	if e.Total == nil {
		return nil
	}
	return &Meta{Total: *e.Total, Page: e.Page, Size: e.Size, Pages: e.Pages}
}
