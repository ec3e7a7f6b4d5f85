package domain

import (
	"errors"
	"net/http"
)

// Kind classifies an Error for transport mapping.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindRateLimit
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindConflict:
		return "ConflictError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindNotFound:
		return "NotFoundError"
	case KindRateLimit:
		return "RateLimitError"
	case KindServer:
		return "ServerError"
	}
	return "ServerError"
}

// HTTPStatus returns the status code the API answers with for this kind.
// Conflicts are reported as 400, matching the registration contract.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindServer:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// Error is the domain error type. Two Errors match under errors.Is when
// their Kind and Message are equal, so the package-level values below work as
// sentinels even after being re-created.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind-only sentinels: errors.Is(err, ErrValidation) matches any validation error.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrRateLimit      = &Error{Kind: KindRateLimit}
)

var (
	ErrEmailTaken         = &Error{Kind: KindConflict, Message: "User with this email already exists"}
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Message: "Invalid credentials"}
	ErrAccountDisabled    = &Error{Kind: KindAuthentication, Message: "Account is deactivated"}
	ErrInvalidToken       = &Error{Kind: KindAuthentication, Message: "Invalid or expired token"}
	ErrMissingToken       = &Error{Kind: KindAuthentication, Message: "Access denied. No token provided"}
	ErrForbidden          = &Error{Kind: KindAuthorization, Message: "Access denied. Insufficient permissions"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Message: "User not found"}
	ErrProfileNotFound    = &Error{Kind: KindNotFound, Message: "Community profile not found"}
	ErrProfileExists      = &Error{Kind: KindConflict, Message: "Community profile already exists"}
	ErrTooManyRequests    = &Error{Kind: KindRateLimit, Message: "Too many requests, please try again later"}
)

// Validation builds a ValidationError with msg.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Internal wraps an unexpected failure as a ServerError.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindServer, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or KindServer when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindServer
}
