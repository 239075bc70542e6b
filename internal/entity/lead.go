package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound     = errors.New("lead não encontrado")
	ErrLeadNameRequired = errors.New("name is required")
)

type Lead struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Whatsapp       string    `json:"whatsapp,omitempty"`
	Interest       string    `json:"interest,omitempty"`
	Origin         string    `json:"origin,omitempty"`
	Status         Stage     `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	Tags           []string  `json:"tags"`
	ManagerID      *string   `json:"managerId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	CourseDateID   *string   `json:"courseDateId,omitempty"`
	StageEnteredAt time.Time `json:"stageEnteredAt"`
}

// NewLead monta um lead recém-capturado: id e data gerados aqui, etapa inicial sempre.
func NewLead(name, email, phone, whatsapp, interest, origin string, courseDateID *string) (*Lead, error) {
	now := time.Now().UTC()
	lead := &Lead{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(name),
		Email:          strings.TrimSpace(email),
		Phone:          strings.TrimSpace(phone),
		Whatsapp:       strings.TrimSpace(whatsapp),
		Interest:       interest,
		Origin:         origin,
		Status:         InitialStage,
		Tags:           []string{},
		CreatedAt:      now,
		CourseDateID:   emptyToNil(courseDateID),
		StageEnteredAt: now,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrLeadNameRequired
	}
	return nil
}

// Normalize garante o invariante de etapa e evita tags nulas no JSON.
func (l *Lead) Normalize() {
	l.Status = NormalizeStage(string(l.Status))
	if l.Tags == nil {
		l.Tags = []string{}
	}
	l.ManagerID = emptyToNil(l.ManagerID)
	l.CourseDateID = emptyToNil(l.CourseDateID)
	if l.StageEnteredAt.IsZero() {
		l.StageEnteredAt = l.CreatedAt
	}
}

// Clone copia o lead sem compartilhar tags nem ponteiros.
func (l Lead) Clone() Lead {
	out := l
	if l.Tags != nil {
		out.Tags = make([]string, len(l.Tags))
		copy(out.Tags, l.Tags)
	}
	if l.ManagerID != nil {
		v := *l.ManagerID
		out.ManagerID = &v
	}
	if l.CourseDateID != nil {
		v := *l.CourseDateID
		out.CourseDateID = &v
	}
	return out
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	ListAll(ctx context.Context) ([]Lead, error)
	Update(ctx context.Context, lead *Lead) error
	// UpdateStatus grava só a etapa (e a hora de entrada nela), sem tocar nos outros campos.
	UpdateStatus(ctx context.Context, id string, status Stage, enteredAt time.Time) error
	Delete(ctx context.Context, id string) error
	ListStale(ctx context.Context, stage Stage, enteredBefore time.Time) ([]Lead, error)
}
