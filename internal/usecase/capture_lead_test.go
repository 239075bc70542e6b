package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/infra/queue"
)

func TestCaptureLead(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockLeadRepository)
		pub := new(MockPublisher)
		bc := &recordingBroadcaster{}
		uc := NewCaptureLeadUseCase(repo, pub, bc)

		repo.On("Create", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
			return l.Name == "João Silva" && l.Status == entity.StageNovoLead && l.ID != ""
		})).Return(nil)
		pub.On("PublishLeadEvent", mock.Anything, mock.MatchedBy(func(ev queue.LeadEvent) bool {
			return ev.Type == queue.EventLeadCreated
		})).Return(nil)

		lead, err := uc.Execute(context.Background(), CreateLeadInput{
			Name:     "  João Silva ",
			Email:    "joao@example.com",
			Phone:    "(11) 98888-7777",
			Interest: "Categoria A",
			Origin:   "landing-page",
		})

		require.NoError(t, err)
		assert.Equal(t, "João Silva", lead.Name)
		assert.Equal(t, entity.StageNovoLead, lead.Status)
		assert.Equal(t, []string{queue.EventLeadCreated}, bc.types())
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("Validation", func(t *testing.T) {
		repo := new(MockLeadRepository)
		uc := NewCaptureLeadUseCase(repo, nil, nil)

		_, err := uc.Execute(context.Background(), CreateLeadInput{Name: "  ", Email: "nope"})

		var de *DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, CodeValidation, de.Code)
		assert.Contains(t, de.Message, "name")
		assert.Contains(t, de.Message, "email")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Database failure", func(t *testing.T) {
		repo := new(MockLeadRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("conn refused"))
		uc := NewCaptureLeadUseCase(repo, nil, nil)

		_, err := uc.Execute(context.Background(), CreateLeadInput{Name: "Ana"})

		assert.True(t, IsTechnicalError(err))
	})

	t.Run("Queue failure does not fail capture", func(t *testing.T) {
		repo := new(MockLeadRepository)
		pub := new(MockPublisher)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		pub.On("PublishLeadEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))
		uc := NewCaptureLeadUseCase(repo, pub, nil)

		lead, err := uc.Execute(context.Background(), CreateLeadInput{Name: "Ana"})

		require.NoError(t, err)
		assert.NotEmpty(t, lead.ID)
	})
}
