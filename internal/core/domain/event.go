package domain

import "time"

// AuthEventType names a security-relevant action recorded in the audit trail.
type AuthEventType string

const (
	EventRegistered     AuthEventType = "registered"
	EventLoginSucceeded AuthEventType = "login_succeeded"
	EventLoginFailed    AuthEventType = "login_failed"
	EventLoginThrottled AuthEventType = "login_throttled"
	EventUserUpdated    AuthEventType = "user_updated"
	EventUserDeleted    AuthEventType = "user_deleted"
)

// AuthEvent is a single audit record. Reason is internal only and is never
// returned to API callers.
type AuthEvent struct {
	Type     AuthEventType
	Username string
	Actor    string
	Reason   string
	At       time.Time
}
