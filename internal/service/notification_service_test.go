package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/portalworks/portal-auth/internal/config"
	"github.com/portalworks/portal-auth/internal/domain"
	"github.com/portalworks/portal-auth/internal/events"
)

func TestNotificationsNeverLogResetToken(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{EmailFrom: "noreply@example.com"}).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventResetRequested,
		SubjectID: "u1",
		Payload:   events.ResetRequestedPayload{Email: "alice@example.com", Token: "raw-secret", ExpiresAt: time.Now()},
	})
	require.NoError(t, err)

	require.Len(t, logs.FilterMessage("sendEmailNotificationStub").All(), 1)
	for _, entry := range logs.All() {
		for _, v := range entry.ContextMap() {
			assert.NotEqual(t, "raw-secret", v)
		}
	}
}

func TestNotificationsWebhookOnPendingRegistration(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{WebhookURL: "http://hooks.local/approvals"}).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventUserRegistered,
		SubjectID: "u1",
		Payload:   events.UserRegisteredPayload{Email: "a@example.com", Status: domain.UserStatusPending},
	}))
	assert.Len(t, logs.FilterMessage("sendWebhookNotificationStub").All(), 1)
	assert.Empty(t, logs.FilterMessage("sendEmailNotificationStub").All())
}
