package domain

import "time"

// UserPreferences holds per-user UI settings created at registration.
type UserPreferences struct {
	UserID             string
	Theme              string
	Language           string
	EmailNotifications bool
	UpdatedAt          time.Time
}

// DefaultPreferences returns the settings every new account starts with.
func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:             userID,
		Theme:              "light",
		Language:           "en",
		EmailNotifications: true,
	}
}
