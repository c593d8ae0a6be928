package repository

import (
	"context"

	"github.com/portalworks/portal-auth/internal/domain"
)

// ActivityRepository stores the append-only audit trail.
type ActivityRepository interface {
	Append(ctx context.Context, entry *domain.ActivityLogEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ActivityLogEntry, error)
}

type activityRepository struct {
	db DB
}

// NewActivityRepository builds repository.
func NewActivityRepository(db DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	const query = `
        INSERT INTO activity_log (user_id, action, table_name, record_id, old_value, new_value, ip, user_agent)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id::text, created_at`
	return r.db.QueryRow(ctx, query,
		entry.UserID,
		string(entry.Action),
		entry.TableName,
		entry.RecordID,
		entry.OldValue,
		entry.NewValue,
		entry.IP,
		entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ActivityLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const query = `
        SELECT id::text, user_id::text, action, table_name, record_id, old_value, new_value, ip, user_agent, created_at
        FROM activity_log WHERE user_id=$1 ORDER BY created_at ASC, id ASC LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityLogEntry
	for rows.Next() {
		var (
			entry  domain.ActivityLogEntry
			action string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&action,
			&entry.TableName,
			&entry.RecordID,
			&entry.OldValue,
			&entry.NewValue,
			&entry.IP,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Action = domain.ActivityAction(action)
		result = append(result, entry)
	}
	return result, rows.Err()
}
