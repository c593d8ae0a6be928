package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/portalworks/portal-auth/internal/domain"
	"github.com/portalworks/portal-auth/internal/events"
	"github.com/portalworks/portal-auth/internal/ids"
	"github.com/portalworks/portal-auth/internal/observability"
	"github.com/portalworks/portal-auth/internal/repository"
	"github.com/portalworks/portal-auth/internal/storage"
	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

var allowedPhotoExt = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// ProfileService manages the caller's own profile: photo and activity trail.
type ProfileService struct {
	users    repository.UserRepository
	activity repository.ActivityRepository
	store    storage.ContentStore
	maxBytes int64
	logger   *zap.Logger
	events   publisher
	now      func() time.Time
}

// ProfileDependencies bundles collaborators for ProfileService.
type ProfileDependencies struct {
	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	Store        storage.ContentStore
	MaxBytes     int64
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	Clock        func() time.Time
}

// NewProfileService constructs the service.
func NewProfileService(deps ProfileDependencies) *ProfileService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &ProfileService{
		users:    deps.UserRepo,
		activity: deps.ActivityRepo,
		store:    deps.Store,
		maxBytes: deps.MaxBytes,
		logger:   logger,
		events:   publisher{dispatcher: deps.Dispatcher, logger: logger, metrics: deps.Metrics, now: now},
		now:      now,
	}
}

// ReplacePhoto writes the new photo, points the user at it and then deletes
// the previous file. The delete is best effort: a crash in between leaves an
// orphaned old file but never a dangling reference.
func (s *ProfileService) ReplacePhoto(ctx context.Context, user *domain.User, filename string, r io.Reader, client domain.ClientInfo) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedPhotoExt[ext]; !ok {
		return "", apperrors.NewValidationError("unsupported photo type", map[string]any{"extension": ext})
	}

	key := fmt.Sprintf("users/%s/photo-%s%s", user.ID, ids.NewAt(s.now()), ext)
	if _, err := s.store.Put(ctx, key, r, s.maxBytes); err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return "", apperrors.NewValidationError("photo too large", map[string]any{"max_bytes": s.maxBytes})
		}
		return "", storeUnavailable(s.logger, "photos.put", err, zap.String("user_id", user.ID))
	}

	if err := s.users.UpdatePhotoKey(ctx, user.ID, key); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove unreferenced photo", zap.String("key", key), zap.Error(delErr))
		}
		return "", storeUnavailable(s.logger, "users.update_photo", err, zap.String("user_id", user.ID))
	}

	old := user.PhotoKey
	user.PhotoKey = key
	if old != "" && old != key {
		if err := s.store.Delete(ctx, old); err != nil {
			s.logger.Warn("failed to delete previous photo", zap.String("key", old), zap.Error(err))
		}
	}

	s.events.publish(ctx, events.EventPhotoUpdated, user.ID, strPtr(user.ID), client, events.PhotoUpdatedPayload{
		OldKey: old,
		NewKey: key,
	})
	return key, nil
}

// Activity lists the user's audit trail, oldest first.
func (s *ProfileService) Activity(ctx context.Context, userID string, limit int) ([]domain.ActivityLogEntry, error) {
	entries, err := s.activity.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, storeUnavailable(s.logger, "activity.list", err, zap.String("user_id", userID))
	}
	return entries, nil
}
