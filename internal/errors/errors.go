package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Client-side failures
	ErrRequestFailed    = errors.New("request failed")
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrValidation       = errors.New("invalid input")
)

// APIError represents a structured API error. On the client side it carries
// a non-2xx response; on the fake backend it is rendered as the response.
type APIError struct {
	Code       string              `json:"error,omitempty"`
	Message    string              `json:"detail"`
	Fields     map[string][]string `json:"-"`
	StatusCode int                 `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Is lets errors.Is match an APIError against the sentinel for its status.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrUnauthorized, ErrNotLoggedIn:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	}
	return false
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// FromResponse builds an APIError from a non-2xx status and its body. The
// backend reports failures either as {"detail": "..."}, as
// {"non_field_errors": [...]}, or as a map of field name to messages.
func FromResponse(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Code: codeForStatus(statusCode)}

	var raw map[string]json.RawMessage
	if len(body) == 0 || json.Unmarshal(body, &raw) != nil {
		return apiErr
	}

	if detail, ok := raw["detail"]; ok {
		var s string
		if json.Unmarshal(detail, &s) == nil {
			apiErr.Message = s
		}
	}
	if code, ok := raw["error"]; ok {
		var s string
		if json.Unmarshal(code, &s) == nil && s != "" {
			apiErr.Code = s
		}
	}

	for field, value := range raw {
		if field == "detail" || field == "error" {
			continue
		}
		if msgs := decodeMessages(value); len(msgs) > 0 {
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string][]string)
			}
			apiErr.Fields[field] = msgs
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = apiErr.firstFieldMessage()
	}
	return apiErr
}

func decodeMessages(value json.RawMessage) []string {
	var list []string
	if json.Unmarshal(value, &list) == nil {
		return list
	}
	var single string
	if json.Unmarshal(value, &single) == nil && single != "" {
		return []string{single}
	}
	return nil
}

func (e *APIError) firstFieldMessage() string {
	if msgs := e.Fields["non_field_errors"]; len(msgs) > 0 {
		return msgs[0]
	}

	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, f := range fields {
		if msgs := e.Fields[f]; len(msgs) > 0 {
			return f + ": " + msgs[0]
		}
	}
	return ""
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	}
	if status >= 500 {
		return "internal_error"
	}
	return strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
}

// Describe renders err as the message shown to the user:
// transport failures are generic, 401 is "not logged in", and server
// rejections are passed through verbatim when they carry a message.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	switch {
	case errors.Is(err, ErrNotLoggedIn):
		return ErrNotLoggedIn.Error()
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return ErrRequestFailed.Error()
	case errors.Is(err, ErrPasswordMismatch), errors.Is(err, ErrValidation):
		return err.Error()
	}
	return ErrRequestFailed.Error()
}

// Common API errors
func NotFound(resource string) *APIError {
	return NewAPIError("not_found", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func BadRequest(message string) *APIError {
	return NewAPIError("bad_request", message, http.StatusBadRequest)
}

func Forbidden(message string) *APIError {
	return NewAPIError("forbidden", message, http.StatusForbidden)
}

func Conflict(message string) *APIError {
	return NewAPIError("conflict", message, http.StatusConflict)
}

func InternalError(message string) *APIError {
	return NewAPIError("internal_error", message, http.StatusInternalServerError)
}

func Unauthorized(message string) *APIError {
	return NewAPIError("unauthorized", message, http.StatusUnauthorized)
}

func IdempotencyConflict() *APIError {
	return NewAPIError("idempotency_conflict", "idempotency key already used with different request", http.StatusConflict)
}

func InvalidTransition(message string) *APIError {
	return NewAPIError("invalid_transition", message, http.StatusBadRequest)
}

// ValidationFailed reports field-level errors in the backend's shape.
func ValidationFailed(fields map[string][]string) *APIError {
	e := NewAPIError("bad_request", "", http.StatusBadRequest)
	e.Fields = fields
	e.Message = e.firstFieldMessage()
	return e
}
