package usecase

import (
	"context"
	"fmt"

	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/infra/queue"
	"github.com/motoescola/backoffice/internal/logger"
)

// CaptureLeadUseCase registra um lead vindo do formulário público. Todo lead nasce em NOVO_LEAD.
type CaptureLeadUseCase struct {
	Repo        entity.LeadRepositoryInterface
	Queue       LeadEventPublisher
	Broadcaster LeadBroadcaster
}

func NewCaptureLeadUseCase(repo entity.LeadRepositoryInterface, q LeadEventPublisher, bc LeadBroadcaster) *CaptureLeadUseCase {
	return &CaptureLeadUseCase{Repo: repo, Queue: q, Broadcaster: bc}
}

func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*entity.Lead, error) {
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	lead, err := entity.NewLead(input.Name, input.Email, input.Phone, input.Whatsapp, input.Interest, input.Origin, input.CourseDateID)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}

	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: fmt.Sprintf("erro ao salvar lead: %v", err)}
	}

	logger.Logger.Infof("🏍️ Lead capturado: %s (origem: %s)", lead.ID, lead.Origin)

	fanOut(context.WithoutCancel(ctx), uc.Queue, uc.Broadcaster, queue.NewLeadEvent(queue.EventLeadCreated, lead))

	return lead, nil
}
