package client

import (
	"fmt"
	"net/http"
)

// APIError is returned for every non-2xx response. Data holds the decoded
// body, or an empty map when the body was not JSON.
type APIError struct {
	Status  int
	Message string
	Data    map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is matches on status, so errors.Is(err, ErrAccessDenied) holds for any 403.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Status == e.Status
}

var (
	ErrAuthenticationRequired = &APIError{Status: http.StatusUnauthorized, Message: "authentication required"}
	ErrAccessDenied           = &APIError{Status: http.StatusForbidden, Message: "access denied"}
	ErrNotFound               = &APIError{Status: http.StatusNotFound, Message: "not found"}
	ErrRateLimited            = &APIError{Status: http.StatusTooManyRequests, Message: "rate limited"}
)

func newAPIError(status int, data map[string]any) *APIError {
	msg, _ := data["message"].(string)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg, Data: data}
}
