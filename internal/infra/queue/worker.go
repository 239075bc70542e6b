package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/logger"
)

// LeadNotifier avisa a equipe sobre um lead novo (e-mail, no caso).
type LeadNotifier interface {
	NotifyNewLead(ctx context.Context, lead entity.Lead) error
}

type Worker struct {
	Channel  *amqp.Channel
	Notifier LeadNotifier
}

func NewWorker(ch *amqp.Channel, notifier LeadNotifier) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
	}
}

// Start consome a fila até ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	logger.Logger.Infof(" [*] Worker rodando e aguardando na fila '%s'", queueName)

	for {
		select {
		case <-ctx.Done():
			logger.Logger.Info("⚠️ [WORKER] Encerrado")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal de consumo fechado")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	if err := w.process(ctx, d.Body); err != nil {
		logger.Logger.Errorf("❌ [WORKER] %v", err)
		// sem requeue: vai para a DLQ
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

func (w *Worker) process(ctx context.Context, body []byte) error {
	var event LeadEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("JSON inválido: %w", err)
	}

	switch event.Type {
	case EventLeadCreated:
		if event.Lead == nil {
			return fmt.Errorf("evento %s sem lead (id=%s)", event.Type, event.LeadID)
		}
		logger.Logger.Infof("📥 [WORKER] Novo lead %s (%s)", event.Lead.Name, event.Lead.Origin)
		if err := w.Notifier.NotifyNewLead(ctx, *event.Lead); err != nil {
			return fmt.Errorf("falha ao notificar lead %s: %w", event.LeadID, err)
		}
		return nil

	default:
		// não tratamos: ack para tirar da fila
		logger.Logger.Warnf("⚠️ [WORKER] Evento desconhecido: %s", event.Type)
		return nil
	}
}
