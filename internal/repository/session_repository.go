package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/portalworks/portal-auth/internal/domain"
)

// SessionRepository persists login sessions keyed by token hash.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	Touch(ctx context.Context, id string, seenAt time.Time) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time, idleTimeout time.Duration) (int64, error)
}

type sessionRepository struct {
	db DB
}

// NewSessionRepository returns a Postgres-backed implementation.
func NewSessionRepository(db DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	const query = `
        INSERT INTO sessions (id, token_hash, user_id, remember, ip, user_agent, created_at, last_seen_at, expires_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.TokenHash,
		session.UserID,
		session.Remember,
		session.IP,
		session.UserAgent,
		session.CreatedAt,
		session.LastSeenAt,
		session.ExpiresAt,
	)
	return mapWriteError(err)
}

func (r *sessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	const query = `
        SELECT id, token_hash, user_id, remember, ip, user_agent, created_at, last_seen_at, expires_at
        FROM sessions WHERE token_hash=$1`
	var s domain.Session
	if err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&s.ID,
		&s.TokenHash,
		&s.UserID,
		&s.Remember,
		&s.IP,
		&s.UserAgent,
		&s.CreatedAt,
		&s.LastSeenAt,
		&s.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Touch slides the inactivity window. expires_at is never changed.
func (r *sessionRepository) Touch(ctx context.Context, id string, seenAt time.Time) error {
	const query = `UPDATE sessions SET last_seen_at=$1 WHERE id=$2`
	_, err := r.db.Exec(ctx, query, seenAt, id)
	return err
}

func (r *sessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	const query = `DELETE FROM sessions WHERE token_hash=$1`
	cmd, err := r.db.Exec(ctx, query, tokenHash)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	const query = `DELETE FROM sessions WHERE user_id=$1`
	cmd, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// DeleteExpired removes hard-expired sessions and, when idleTimeout is
// positive, non-remembered sessions idle for at least idleTimeout.
func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time, idleTimeout time.Duration) (int64, error) {
	const hardOnly = `DELETE FROM sessions WHERE expires_at <= $1`
	const withIdle = `DELETE FROM sessions WHERE expires_at <= $1 OR (NOT remember AND last_seen_at <= $2)`

	var (
		cmd pgconn.CommandTag
		err error
	)
	if idleTimeout > 0 {
		cmd, err = r.db.Exec(ctx, withIdle, now, now.Add(-idleTimeout))
	} else {
		cmd, err = r.db.Exec(ctx, hardOnly, now)
	}
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
