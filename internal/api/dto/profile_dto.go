package dto

import (
	"time"

	"github.com/portalworks/portal-auth/internal/domain"
)

// PreferencesResponse is the public view of user settings.
type PreferencesResponse struct {
	Theme              string `json:"theme"`
	Language           string `json:"language"`
	EmailNotifications bool   `json:"email_notifications"`
}

// NewPreferencesResponse maps domain preferences.
func NewPreferencesResponse(p *domain.UserPreferences) PreferencesResponse {
	return PreferencesResponse{
		Theme:              p.Theme,
		Language:           p.Language,
		EmailNotifications: p.EmailNotifications,
	}
}

// ActivityEntryResponse is one audit trail row as shown to its owner.
type ActivityEntryResponse struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	RecordID  string         `json:"record_id,omitempty"`
	NewValue  map[string]any `json:"new_value,omitempty"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewActivityResponse maps entries, keeping order.
func NewActivityResponse(entries []domain.ActivityLogEntry) []ActivityEntryResponse {
	out := make([]ActivityEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ActivityEntryResponse{
			ID:        e.ID,
			Action:    string(e.Action),
			RecordID:  e.RecordID,
			NewValue:  e.NewValue,
			IP:        e.IP,
			UserAgent: e.UserAgent,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
