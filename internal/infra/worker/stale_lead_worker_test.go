package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/motoescola/backoffice/internal/entity"
)

type MockStaleLister struct {
	mock.Mock
}

func (m *MockStaleLister) ListStale(ctx context.Context, stage entity.Stage, before time.Time) ([]entity.Lead, error) {
	args := m.Called(ctx, stage, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

type MockDigestSender struct {
	mock.Mock
}

func (m *MockDigestSender) SendStaleDigest(ctx context.Context, stage entity.Stage, since time.Duration, leads []entity.Lead) error {
	return m.Called(ctx, stage, since, leads).Error(0)
}

var now = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func newWorker(repo *MockStaleLister, sender *MockDigestSender) *StaleLeadWorker {
	w := NewStaleLeadWorker(repo, sender, "0 8 * * *", 48*time.Hour)
	w.now = func() time.Time { return now }
	return w
}

func TestRunOnceSendsDigest(t *testing.T) {
	repo := new(MockStaleLister)
	sender := new(MockDigestSender)
	leads := []entity.Lead{{ID: "a", Name: "Ana"}}

	repo.On("ListStale", mock.Anything, entity.StageNovoLead, now.Add(-48*time.Hour)).Return(leads, nil)
	sender.On("SendStaleDigest", mock.Anything, entity.StageNovoLead, 48*time.Hour, leads).Return(nil)

	n, err := newWorker(repo, sender).RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	sender.AssertExpectations(t)
}

func TestRunOnceNothingStale(t *testing.T) {
	repo := new(MockStaleLister)
	sender := new(MockDigestSender)
	repo.On("ListStale", mock.Anything, mock.Anything, mock.Anything).Return([]entity.Lead{}, nil)

	n, err := newWorker(repo, sender).RunOnce(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	sender.AssertNotCalled(t, "SendStaleDigest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunOnceErrors(t *testing.T) {
	repo := new(MockStaleLister)
	repo.On("ListStale", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := newWorker(repo, new(MockDigestSender)).RunOnce(context.Background())
	assert.Error(t, err)

	repo = new(MockStaleLister)
	sender := new(MockDigestSender)
	repo.On("ListStale", mock.Anything, mock.Anything, mock.Anything).Return([]entity.Lead{{ID: "a"}}, nil)
	sender.On("SendStaleDigest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp"))

	n, err := newWorker(repo, sender).RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	w := NewStaleLeadWorker(new(MockStaleLister), new(MockDigestSender), "nem é cron", time.Hour)

	assert.Error(t, w.Start(context.Background()))
}

func TestStartStopsWithContext(t *testing.T) {
	w := newWorker(new(MockStaleLister), new(MockDigestSender))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker não encerrou")
	}
}
