package worker

import (
	"github.com/portalworks/portal-auth/internal/service"
)

// StartSubscribers registers the event handlers that back the audit trail
// and notification stubs.
func StartSubscribers(recorder *service.ActivityRecorder, notifications *service.NotificationService) {
	if recorder != nil {
		recorder.RegisterHandlers()
	}
	if notifications != nil {
		notifications.RegisterHandlers()
	}
}
