package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Base failure kinds, checkable with errors.Is(). The pipeline maps every
// failed call onto exactly one of these.
var (
	// ErrTransport means no response was received (timeout, connectivity).
	ErrTransport = errors.New("transport failure")
	// ErrUnauthorized is HTTP 401; the session is invalidated when it occurs.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is HTTP 403.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is HTTP 404.
	ErrNotFound = errors.New("not found")
	// ErrValidation is HTTP 422 with structured field errors.
	ErrValidation = errors.New("validation failure")
	// ErrServer covers HTTP 500 and any unclassified status.
	ErrServer = errors.New("server failure")
	// ErrLogical means HTTP success but the response envelope carried a
	// non-zero status code.
	ErrLogical = errors.New("logical failure")
)

// User-facing messages raised on the notification bus per failure kind.
const (
	msgRequestFailed    = "request failed"
	msgUnauthorized     = "unauthorized, please log in again"
	msgForbidden        = "you do not have permission to perform this action"
	msgNotFound         = "the requested resource does not exist"
	msgValidationFailed = "input data validation failed"
	msgServerError      = "server error, please try again later"
	msgNetworkError     = "network error, please check your connection"
)

// Error is a classified request failure. It carries the user-displayable
// message that was raised on the notification bus, so callers adding
// call-specific handling never need to rebuild it.
type Error struct {
	Kind    error  // one of the base kinds above
	Status  int    // HTTP status, 0 for transport and logical failures
	Code    int    // envelope code, set for logical failures only
	Message string // user-displayable message
	Err     error  // underlying error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%v: %s (status %d)", e.Kind, e.Message, e.Status)
	case e.Code != 0:
		return fmt.Sprintf("%v: %s (code %d)", e.Kind, e.Message, e.Code)
	default:
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
}

// Is matches the error against its base kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps a non-2xx HTTP response onto the failure taxonomy.
func classify(status int, body []byte) *Error {
	e := &Error{Status: status}

	switch status {
	case 401:
		e.Kind = ErrUnauthorized
		e.Message = msgUnauthorized
	case 403:
		e.Kind = ErrForbidden
		e.Message = msgForbidden
	case 404:
		e.Kind = ErrNotFound
		e.Message = msgNotFound
	case 422:
		e.Kind = ErrValidation
		e.Message = validationMessage(body)
	case 500:
		e.Kind = ErrServer
		e.Message = msgServerError
	default:
		e.Kind = ErrServer
		e.Message = msgRequestFailed
		if detail := stringDetail(body); detail != "" {
			e.Message = detail
		}
	}

	return e
}

// validationMessage extracts the message to display for a 422 response.
// FastAPI-style backends return {"detail": [{"msg": ...}, ...]} for field
// errors and sometimes a bare {"detail": "..."} string.
func validationMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return msgValidationFailed
	}

	var fields []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &fields); err == nil {
		if len(fields) > 0 && fields[0].Msg != "" {
			return fields[0].Msg
		}
		return msgValidationFailed
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil && s != "" {
		return s
	}

	return msgValidationFailed
}

// stringDetail returns the response's "detail" field when it is a bare string.
func stringDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	return ""
}
