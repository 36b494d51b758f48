package circleapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/circle-miniapp/internal/errors"
)

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func (e *Error) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *Error) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest
}

// parseError picks the first of the backend's message, error or detail
// fields and falls back to the status line.
func parseError(statusCode int, status string, body []byte) *Error {
	apiErr := &Error{StatusCode: statusCode, Body: body}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, field := range []string{"message", "error", "detail"} {
			if msg := stringField(envelope[field]); msg != "" {
				apiErr.Message = msg
				return apiErr
			}
		}
	}

	if status == "" {
		status = http.StatusText(statusCode)
	}
	apiErr.Message = "HTTP error: " + status
	return apiErr
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	// DRF sometimes nests the message in a list
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
