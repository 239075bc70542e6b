package usecase

import (
	"context"
	"time"

	"github.com/motoescola/backoffice/internal/infra/queue"
)

// LeadEventPublisher entrega eventos de lead na fila.
type LeadEventPublisher interface {
	PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error
}

// LeadBroadcaster empurra eventos para os quadros conectados por websocket.
type LeadBroadcaster interface {
	Broadcast(event queue.LeadEvent)
}

type TokenIssuer interface {
	Issue(username string) (token string, expiresAt time.Time, err error)
}
