package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/logger"
)

const digestTimeout = 2 * time.Minute

type staleLister interface {
	ListStale(ctx context.Context, stage entity.Stage, enteredBefore time.Time) ([]entity.Lead, error)
}

type DigestSender interface {
	SendStaleDigest(ctx context.Context, stage entity.Stage, since time.Duration, leads []entity.Lead) error
}

// StaleLeadWorker manda, no horário do cron, o resumo dos leads esquecidos em NOVO_LEAD.
type StaleLeadWorker struct {
	repo   staleLister
	sender DigestSender
	after  time.Duration
	spec   string
	now    func() time.Time
}

func NewStaleLeadWorker(repo staleLister, sender DigestSender, spec string, after time.Duration) *StaleLeadWorker {
	return &StaleLeadWorker{
		repo:   repo,
		sender: sender,
		after:  after,
		spec:   spec,
		now:    time.Now,
	}
}

// Start agenda o job e bloqueia até ctx ser cancelado.
func (w *StaleLeadWorker) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(w.spec, func() {
		jobCtx, cancel := context.WithTimeout(ctx, digestTimeout)
		defer cancel()
		if _, err := w.RunOnce(jobCtx); err != nil {
			logger.Logger.WithError(err).Error("❌ Falha no resumo de leads parados")
		}
	})
	if err != nil {
		return fmt.Errorf("cron inválido %q: %w", w.spec, err)
	}

	logger.Logger.Infof("🕒 Stale Lead Worker iniciado (cron '%s', janela %s)", w.spec, w.after)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Logger.Info("⚠️ Stale Lead Worker encerrado")
	return nil
}

// RunOnce busca os leads parados e envia o resumo. Devolve quantos foram listados.
func (w *StaleLeadWorker) RunOnce(ctx context.Context) (int, error) {
	cutoff := w.now().Add(-w.after)

	leads, err := w.repo.ListStale(ctx, entity.InitialStage, cutoff)
	if err != nil {
		return 0, fmt.Errorf("erro ao buscar leads parados: %w", err)
	}

	if len(leads) == 0 {
		return 0, nil
	}

	if err := w.sender.SendStaleDigest(ctx, entity.InitialStage, w.after, leads); err != nil {
		return len(leads), err
	}

	logger.Logger.Infof("✅ Resumo enviado com %d lead(s) parados", len(leads))
	return len(leads), nil
}
