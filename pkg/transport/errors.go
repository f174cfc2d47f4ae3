package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized matches 401 and 403 API errors.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches 404 API errors.
	ErrNotFound = errors.New("not found")
)

// APIError represents a non-success response from a remote API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, msg)
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
