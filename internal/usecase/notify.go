package usecase

import (
	"context"

	"github.com/motoescola/backoffice/internal/infra/http/middleware"
	"github.com/motoescola/backoffice/internal/infra/queue"
	"github.com/motoescola/backoffice/internal/logger"
)

// fanOut publica na fila e no websocket. Falhas aqui não desfazem a escrita no banco.
func fanOut(ctx context.Context, pub LeadEventPublisher, bc LeadBroadcaster, events ...queue.LeadEvent) {
	for _, ev := range events {
		if pub != nil {
			if err := pub.PublishLeadEvent(ctx, ev); err != nil {
				middleware.RecordQueuePublishError(ev.Type)
				logger.Logger.Errorf("🔥 CRITICAL: lead %s gravado, mas falha na fila (%s): %v", ev.LeadID, ev.Type, err)
			}
		}
		if bc != nil {
			bc.Broadcast(ev)
		}
	}
}
