package domain

import "time"

// Session is a server-side login session. Only the hash of the opaque token is kept.
type Session struct {
	ID         string
	TokenHash  string
	UserID     string
	Remember   bool
	IP         string
	UserAgent  string
	CreatedAt  time.Time
	LastSeenAt time.Time
	ExpiresAt  time.Time
}

// ExpiredAt reports whether the hard expiry has been reached at now.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IdleAt reports whether the inactivity window has elapsed at now.
// A zero timeout disables the check, and remembered sessions are exempt.
func (s *Session) IdleAt(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 || s.Remember {
		return false
	}
	return !now.Before(s.LastSeenAt.Add(timeout))
}
