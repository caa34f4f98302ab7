package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	// ErrSessionExpired marks a request that failed because the credential
	// expired and could not be refreshed. The session has been cleared.
	ErrSessionExpired = errors.New("session expired")

	// ErrAccessDenied marks a 403 response. Not recoverable.
	ErrAccessDenied = errors.New("access denied")
)

// genericErrorMessage is the user-facing fallback when the server did not
// provide one.
const genericErrorMessage = "Unexpected error occurred."

// APIError is a non-2xx response from the ShipMate API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// IsNotFound reports whether err is an API 404. Callers use it to interpret
// allowlisted not-found responses as domain states rather than failures.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// extractMessage pulls a user-facing message out of an error body, checking
// the conventional "message" then "error" keys.
func extractMessage(body []byte) string {
	if v := gjson.GetBytes(body, "message"); v.Type == gjson.String && v.Str != "" {
		return v.Str
	}
	if v := gjson.GetBytes(body, "error"); v.Type == gjson.String && v.Str != "" {
		return v.Str
	}
	return ""
}
