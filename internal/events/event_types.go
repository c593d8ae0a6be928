package events

import (
	"time"

	"github.com/portalworks/portal-auth/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventLoginSucceeded  EventType = "login_succeeded"
	EventLoginFailed     EventType = "login_failed"
	EventLoggedOut       EventType = "logged_out"
	EventPasswordChanged EventType = "password_changed"
	EventPasswordReset   EventType = "password_reset"
	EventResetRequested  EventType = "password_reset_requested"
	EventStatusChanged   EventType = "account_status_changed"
	EventPhotoUpdated    EventType = "photo_updated"
)

// Actor encapsulates who triggered an event.
type Actor struct {
	UserID *string           `json:"user_id,omitempty"`
	Client domain.ClientInfo `json:"client"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string            `json:"username"`
	Email    string            `json:"email"`
	Role     domain.Role       `json:"role"`
	Status   domain.UserStatus `json:"status"`
}

// LoginPayload payload for login_succeeded and login_failed.
type LoginPayload struct {
	SessionID string `json:"session_id,omitempty"`
	Remember  bool   `json:"remember,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.UserStatus `json:"old_status"`
	NewStatus domain.UserStatus `json:"new_status"`
}

// ResetRequestedPayload carries the raw token to the delivery stub only.
type ResetRequestedPayload struct {
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PhotoUpdatedPayload payload.
type PhotoUpdatedPayload struct {
	OldKey string `json:"old_key,omitempty"`
	NewKey string `json:"new_key"`
}
