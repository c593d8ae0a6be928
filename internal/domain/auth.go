package domain

import "time"

// ClientInfo is request metadata recorded for audit only.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// PasswordResetToken is a single-use reset grant. Only the token hash is stored.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still be redeemed at now.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
