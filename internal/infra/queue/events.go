package queue

import (
	"time"

	"github.com/motoescola/backoffice/internal/entity"
)

// Tipos de evento, usados também como routing key.
const (
	EventLeadCreated       = "lead.created"
	EventLeadUpdated       = "lead.updated"
	EventLeadStatusChanged = "lead.status_changed"
	EventLeadDeleted       = "lead.deleted"
)

type LeadEvent struct {
	Type       string       `json:"type"`
	LeadID     string       `json:"leadId"`
	Lead       *entity.Lead `json:"lead,omitempty"`
	From       entity.Stage `json:"from,omitempty"`
	To         entity.Stage `json:"to,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

func NewLeadEvent(eventType string, lead *entity.Lead) LeadEvent {
	ev := LeadEvent{Type: eventType, OccurredAt: time.Now().UTC()}
	if lead != nil {
		c := lead.Clone()
		ev.LeadID = c.ID
		ev.Lead = &c
	}
	return ev
}

func NewStatusChangedEvent(lead *entity.Lead, change *entity.StatusChange) LeadEvent {
	ev := NewLeadEvent(EventLeadStatusChanged, lead)
	ev.From = change.From
	ev.To = change.To
	ev.OccurredAt = change.ChangedAt
	return ev
}
