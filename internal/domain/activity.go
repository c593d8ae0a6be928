package domain

import "time"

// ActivityAction tags audit entries.
type ActivityAction string

const (
	ActionUserRegistered  ActivityAction = "user_registered"
	ActionLoginSucceeded  ActivityAction = "login_succeeded"
	ActionLoginFailed     ActivityAction = "login_failed"
	ActionLogout          ActivityAction = "logout"
	ActionPasswordChanged ActivityAction = "password_changed"
	ActionPasswordReset   ActivityAction = "password_reset"
	ActionStatusChanged   ActivityAction = "status_changed"
	ActionPhotoUpdated    ActivityAction = "photo_updated"
)

// ActivityLogEntry is an immutable audit trail entry.
type ActivityLogEntry struct {
	ID        string
	UserID    *string
	Action    ActivityAction
	TableName string
	RecordID  string
	OldValue  map[string]any
	NewValue  map[string]any
	IP        string
	UserAgent string
	CreatedAt time.Time
}
