package repository

import (
	"context"

	"github.com/portalworks/portal-auth/internal/domain"
)

// PreferencesRepository manages per-user settings.
type PreferencesRepository interface {
	CreateDefaults(ctx context.Context, prefs *domain.UserPreferences) error
	GetByUserID(ctx context.Context, userID string) (*domain.UserPreferences, error)
}

type preferencesRepository struct {
	db DB
}

// NewPreferencesRepository constructs repository.
func NewPreferencesRepository(db DB) PreferencesRepository {
	return &preferencesRepository{db: db}
}

func (r *preferencesRepository) CreateDefaults(ctx context.Context, prefs *domain.UserPreferences) error {
	const query = `
        INSERT INTO user_preferences (user_id, theme, language, email_notifications)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (user_id) DO NOTHING`
	_, err := r.db.Exec(ctx, query, prefs.UserID, prefs.Theme, prefs.Language, prefs.EmailNotifications)
	return err
}

func (r *preferencesRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	const query = `
        SELECT user_id, theme, language, email_notifications, updated_at
        FROM user_preferences WHERE user_id=$1`
	var prefs domain.UserPreferences
	if err := r.db.QueryRow(ctx, query, userID).Scan(
		&prefs.UserID,
		&prefs.Theme,
		&prefs.Language,
		&prefs.EmailNotifications,
		&prefs.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &prefs, nil
}
