package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/persistorai/speedrun/internal/models"
)

// APIError represents a structured error response from the speedrun API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`

	body []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("speedrun: %d %s: %s (request_id=%s)", e.StatusCode, e.Code, e.Message, e.RequestID)
	}

	return fmt.Sprintf("speedrun: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the API error code back to the sentinel the server classified it as.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "invalid_request":
		return models.ErrInvalidTitle
	case "not_found":
		return models.ErrNotFound
	case "unreachable":
		return models.ErrUnreachable
	case "search_limit":
		return models.ErrSearchLimit
	case "store_unavailable", "timeout":
		return models.ErrStoreConnection
	default:
		return nil
	}
}

// IsNotFound returns true if the error is a 404 not found.
func IsNotFound(err error) bool {
	return statusIs(err, http.StatusNotFound)
}

// IsRateLimited returns true if the error is a 429 rate limit.
func IsRateLimited(err error) bool {
	return statusIs(err, http.StatusTooManyRequests)
}

func statusIs(err error, status int) bool {
	var e *APIError
	if errors.As(err, &e) {
		return e.StatusCode == status
	}

	return false
}

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, body: body}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}

	return apiErr
}
