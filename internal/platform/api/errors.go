package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
)

// Sentinel errors mapped from backend status codes.
var (
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrForbidden    = errors.New("api: forbidden")
	ErrNotFound     = errors.New("api: resource not found")
	ErrUnavailable  = errors.New("api: backend unavailable")
)

// Error is returned when the backend answers with a failure envelope or a
// non-2xx status that is not a validation failure.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Unwrap exposes the sentinel matching the status so callers can use errors.Is.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	}
	return nil
}

// ValidationError carries the per-field messages of a 422 response.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return "api: validation failed: " + e.Message
	}
	return "api: validation failed"
}

// First returns the first message reported for field.
func (e *ValidationError) First(field string) string {
	if e == nil {
		return ""
	}
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// FieldNames lists the fields with errors in a stable order.
func (e *ValidationError) FieldNames() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AsValidation extracts a *ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
