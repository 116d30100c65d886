package worker

import (
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartActivityWorker registers the lifecycle activity handlers.
func StartActivityWorker(activity *service.TicketActivityService) {
	if activity == nil {
		return
	}
	activity.RegisterHandlers()
}
