package domain

import "time"

// AuthEventType names an authentication activity worth auditing.
type AuthEventType string

const (
	AuthEventRegister    AuthEventType = "register"
	AuthEventLogin       AuthEventType = "login"
	AuthEventLoginFailed AuthEventType = "login_failed"
	AuthEventLogout      AuthEventType = "logout"
)

// AuthEvent is one entry of the authentication audit trail.
type AuthEvent struct {
	Type       AuthEventType
	Email      string
	UserID     string // empty for failed logins against unknown emails
	IP         string
	UserAgent  string
	OccurredAt time.Time
}
