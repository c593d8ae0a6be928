package service

import (
	"context"
	"fmt"

	"github.com/portalworks/portal-auth/internal/domain"
	"github.com/portalworks/portal-auth/internal/events"
	"github.com/portalworks/portal-auth/internal/repository"
)

// ActivityRecorder turns domain events into activity log rows.
type ActivityRecorder struct {
	dispatcher events.Dispatcher
	activity   repository.ActivityRepository
}

// NewActivityRecorder creates the recorder.
func NewActivityRecorder(dispatcher events.Dispatcher, activity repository.ActivityRepository) *ActivityRecorder {
	return &ActivityRecorder{dispatcher: dispatcher, activity: activity}
}

var activityActions = map[events.EventType]domain.ActivityAction{
	events.EventUserRegistered:  domain.ActionUserRegistered,
	events.EventLoginSucceeded:  domain.ActionLoginSucceeded,
	events.EventLoginFailed:     domain.ActionLoginFailed,
	events.EventLoggedOut:       domain.ActionLogout,
	events.EventPasswordChanged: domain.ActionPasswordChanged,
	events.EventPasswordReset:   domain.ActionPasswordReset,
	events.EventStatusChanged:   domain.ActionStatusChanged,
	events.EventPhotoUpdated:    domain.ActionPhotoUpdated,
}

// RegisterHandlers subscribes to every audited event.
func (r *ActivityRecorder) RegisterHandlers() {
	if r.dispatcher == nil {
		return
	}
	for eventType := range activityActions {
		r.dispatcher.Subscribe(eventType, r.record)
	}
}

func (r *ActivityRecorder) record(ctx context.Context, event events.Event) error {
	entry := &domain.ActivityLogEntry{
		UserID:    event.Actor.UserID,
		Action:    activityActions[event.Type],
		TableName: "users",
		RecordID:  event.SubjectID,
		IP:        event.Actor.Client.IP,
		UserAgent: event.Actor.Client.UserAgent,
	}

	switch p := event.Payload.(type) {
	case events.UserRegisteredPayload:
		entry.NewValue = map[string]any{"username": p.Username, "email": p.Email, "role": p.Role, "status": p.Status}
	case events.LoginPayload:
		entry.TableName = "sessions"
		if p.SessionID != "" {
			entry.RecordID = p.SessionID
		}
		entry.NewValue = map[string]any{"remember": p.Remember}
		if p.Reason != "" {
			entry.NewValue = map[string]any{"reason": p.Reason}
		}
	case events.StatusChangedPayload:
		entry.OldValue = map[string]any{"status": p.OldStatus}
		entry.NewValue = map[string]any{"status": p.NewStatus}
	case events.PhotoUpdatedPayload:
		entry.OldValue = map[string]any{"photo_key": p.OldKey}
		entry.NewValue = map[string]any{"photo_key": p.NewKey}
	}

	if err := r.activity.Append(ctx, entry); err != nil {
		return fmt.Errorf("append activity %s: %w", entry.Action, err)
	}
	return nil
}
