package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/portalworks/portal-auth/internal/auth"
	"github.com/portalworks/portal-auth/internal/domain"
	"github.com/portalworks/portal-auth/internal/events"
	"github.com/portalworks/portal-auth/internal/observability"
	"github.com/portalworks/portal-auth/internal/repository"
	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

// AccountService gives administrators control over account status.
type AccountService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	logger   *zap.Logger
	events   publisher
}

// AccountDependencies bundles collaborators for AccountService.
type AccountDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Clock       func() time.Time
}

// NewAccountService constructs the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		users:    deps.UserRepo,
		sessions: deps.SessionRepo,
		logger:   logger,
		events:   publisher{dispatcher: deps.Dispatcher, logger: logger, metrics: deps.Metrics, now: now},
	}
}

func requireAdmin(actor *auth.Principal) error {
	if !actor.HasRole(domain.RoleAdmin) {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// ListByStatus returns accounts in a given state, e.g. the approval queue.
func (s *AccountService) ListByStatus(ctx context.Context, actor *auth.Principal, status domain.UserStatus, limit, offset int) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}
	users, err := s.users.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, storeUnavailable(s.logger, "users.list_by_status", err)
	}
	return users, nil
}

// SetStatus moves an account to a new state. Suspended and rejected
// accounts lose all sessions immediately.
func (s *AccountService) SetStatus(ctx context.Context, actor *auth.Principal, userID string, status domain.UserStatus, client domain.ClientInfo) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}
	if actor.User.ID == userID && !status.CanLogin() {
		return nil, apperrors.NewConflict("administrators cannot lock themselves out", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, storeUnavailable(s.logger, "users.get", err)
	}
	old := user.Status
	if old == status {
		return user, nil
	}

	if err := s.users.UpdateStatus(ctx, user.ID, status); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, storeUnavailable(s.logger, "users.update_status", err)
	}
	user.Status = status

	if !status.CanLogin() {
		if _, err := s.sessions.DeleteByUser(ctx, user.ID); err != nil {
			s.logger.Warn("failed to revoke sessions", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	s.events.publish(ctx, events.EventStatusChanged, user.ID, strPtr(actor.User.ID), client, events.StatusChangedPayload{
		OldStatus: old,
		NewStatus: status,
	})
	return user, nil
}
