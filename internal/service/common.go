package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/portalworks/portal-auth/internal/domain"
	"github.com/portalworks/portal-auth/internal/events"
	"github.com/portalworks/portal-auth/internal/observability"
	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// storeUnavailable logs the infrastructure failure with context and returns
// the generic error shown to callers.
func storeUnavailable(logger *zap.Logger, op string, err error, fields ...zap.Field) error {
	logger.Error("store unavailable", append([]zap.Field{zap.String("op", op), zap.Error(err)}, fields...)...)
	return apperrors.NewStoreUnavailable(err)
}

// publisher emits domain events. Subscriber failures, including activity log
// writes, are logged and never reach the caller.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

func (p publisher) publish(ctx context.Context, eventType events.EventType, subjectID string, userID *string, client domain.ClientInfo, payload interface{}) {
	if p.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     events.Actor{UserID: userID, Client: client},
		Timestamp: p.now(),
		Payload:   payload,
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.metrics.RecordActivityDropped()
		p.logger.Warn("event subscriber failed",
			zap.String("event_type", string(eventType)),
			zap.String("subject_id", subjectID),
			zap.Error(err))
	}
}

func strPtr(s string) *string {
	return &s
}
