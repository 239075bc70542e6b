package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatusChange registra cada troca de etapa de um lead.
type StatusChange struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"leadId"`
	From      Stage     `json:"from"`
	To        Stage     `json:"to"`
	ChangedAt time.Time `json:"changedAt"`
}

func NewStatusChange(leadID string, from, to Stage) *StatusChange {
	return &StatusChange{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		From:      from,
		To:        to,
		ChangedAt: time.Now().UTC(),
	}
}

type StatusHistoryRepositoryInterface interface {
	Append(ctx context.Context, change *StatusChange) error
	ListByLead(ctx context.Context, leadID string) ([]StatusChange, error)
}
