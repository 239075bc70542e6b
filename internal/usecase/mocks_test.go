package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/infra/queue"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) ListAll(ctx context.Context) ([]entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id string, status entity.Stage, enteredAt time.Time) error {
	return m.Called(ctx, id, status, enteredAt).Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLeadRepository) ListStale(ctx context.Context, stage entity.Stage, before time.Time) ([]entity.Lead, error) {
	args := m.Called(ctx, stage, before)
	return args.Get(0).([]entity.Lead), args.Error(1)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, change *entity.StatusChange) error {
	return m.Called(ctx, change).Error(0)
}

func (m *MockHistoryRepository) ListByLead(ctx context.Context, leadID string) ([]entity.StatusChange, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.StatusChange), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error {
	return m.Called(ctx, event).Error(0)
}

// recordingBroadcaster guarda os eventos na ordem recebida.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []queue.LeadEvent
}

func (r *recordingBroadcaster) Broadcast(ev queue.LeadEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingBroadcaster) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type stubIssuer struct {
	token string
	err   error
}

func (s stubIssuer) Issue(string) (string, time.Time, error) {
	return s.token, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), s.err
}

func strPtr(s string) *string { return &s }
