package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/infra/queue"
	"github.com/motoescola/backoffice/internal/logger"
)

// ManageLeadUseCase cobre as operações administrativas sobre leads existentes.
type ManageLeadUseCase struct {
	Repo        entity.LeadRepositoryInterface
	HistoryRepo entity.StatusHistoryRepositoryInterface
	Queue       LeadEventPublisher
	Broadcaster LeadBroadcaster
}

func NewManageLeadUseCase(
	repo entity.LeadRepositoryInterface,
	history entity.StatusHistoryRepositoryInterface,
	q LeadEventPublisher,
	bc LeadBroadcaster,
) *ManageLeadUseCase {
	return &ManageLeadUseCase{Repo: repo, HistoryRepo: history, Queue: q, Broadcaster: bc}
}

func (uc *ManageLeadUseCase) List(ctx context.Context) ([]entity.Lead, error) {
	leads, err := uc.Repo.ListAll(ctx)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: fmt.Sprintf("erro ao listar leads: %v", err)}
	}
	if leads == nil {
		leads = []entity.Lead{}
	}
	return leads, nil
}

func (uc *ManageLeadUseCase) Get(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, uc.mapRepoError(id, err)
	}
	return lead, nil
}

// Update aplica o patch. Se a etapa mudar, a troca entra no histórico na mesma
// transação; se o histórico falhar, o lead volta ao estado anterior.
// PATCH só de etapa grava apenas a coluna de etapa, sem sobrescrever edições concorrentes.
func (uc *ManageLeadUseCase) Update(ctx context.Context, id string, input UpdateLeadInput) (*UpdateLeadOutput, error) {
	if errs := ValidateUpdateLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	current, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, uc.mapRepoError(id, err)
	}

	previous := current.Clone()
	updated := current.Clone()
	input.ApplyTo(&updated)

	var change *entity.StatusChange
	if previous.Status != updated.Status {
		change = entity.NewStatusChange(id, previous.Status, updated.Status)
		updated.StageEnteredAt = change.ChangedAt
	}

	statusOnly := input.StatusOnly()
	if statusOnly && change == nil {
		return &UpdateLeadOutput{Lead: &updated}, nil
	}

	txn := NewTransaction()
	if statusOnly {
		txn.AddOperation("update_status", func(ctx context.Context) error {
			return uc.Repo.UpdateStatus(ctx, id, updated.Status, updated.StageEnteredAt)
		})
		txn.AddCompensation("restore_status", func(ctx context.Context) error {
			return uc.Repo.UpdateStatus(ctx, id, previous.Status, previous.StageEnteredAt)
		})
	} else {
		txn.AddOperation("update_lead", func(ctx context.Context) error {
			return uc.Repo.Update(ctx, &updated)
		})
		txn.AddCompensation("restore_lead", func(ctx context.Context) error {
			return uc.Repo.Update(ctx, &previous)
		})
	}

	if change != nil {
		txn.AddOperation("record_status_change", func(ctx context.Context) error {
			return uc.HistoryRepo.Append(ctx, change)
		})
	}

	if err := txn.Execute(ctx); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound(id)
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: fmt.Sprintf("erro ao atualizar lead: %v", err)}
	}

	events := []queue.LeadEvent{queue.NewLeadEvent(queue.EventLeadUpdated, &updated)}
	if change != nil {
		logger.Logger.Infof("🔀 Lead %s: %s → %s", id, change.From, change.To)
		events = append(events, queue.NewStatusChangedEvent(&updated, change))
	}
	fanOut(context.WithoutCancel(ctx), uc.Queue, uc.Broadcaster, events...)

	return &UpdateLeadOutput{Lead: &updated, StatusChange: change}, nil
}

func (uc *ManageLeadUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.Repo.Delete(ctx, id); err != nil {
		return uc.mapRepoError(id, err)
	}

	logger.Logger.Infof("🗑️ Lead %s removido", id)

	ev := queue.NewLeadEvent(queue.EventLeadDeleted, nil)
	ev.LeadID = id
	fanOut(context.WithoutCancel(ctx), uc.Queue, uc.Broadcaster, ev)

	return nil
}

// History devolve as trocas de etapa do lead, da mais antiga para a mais recente.
func (uc *ManageLeadUseCase) History(ctx context.Context, id string) ([]entity.StatusChange, error) {
	if _, err := uc.Repo.FindByID(ctx, id); err != nil {
		return nil, uc.mapRepoError(id, err)
	}

	changes, err := uc.HistoryRepo.ListByLead(ctx, id)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: fmt.Sprintf("erro ao buscar histórico: %v", err)}
	}
	if changes == nil {
		changes = []entity.StatusChange{}
	}
	return changes, nil
}

func (uc *ManageLeadUseCase) mapRepoError(id string, err error) error {
	if errors.Is(err, entity.ErrLeadNotFound) {
		return notFound(id)
	}
	return &TechnicalError{Code: CodeDatabase, Message: fmt.Sprintf("erro no banco: %v", err)}
}
