package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/logger"
)

// LeadRepository é o que o quadro precisa do serviço de leads.
type LeadRepository interface {
	ListLeads(ctx context.Context) ([]entity.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, status entity.Stage) error
}

// Move descreve um arrasto de card. ToIndex é a posição na coluna de destino já sem o card
// (mesma convenção dos componentes de drag-and-drop); acima do tamanho vira append.
type Move struct {
	LeadID    string
	From      entity.Stage
	FromIndex int
	To        entity.Stage
	ToIndex   int
}

func (m Move) isNoop() bool {
	return m.From == m.To && m.FromIndex == m.ToIndex
}

type Option func(*Board)

// WithOnChange registra quem redesenha o quadro a cada mudança do snapshot.
func WithOnChange(fn func(Snapshot)) Option {
	return func(b *Board) { b.onChange = append(b.onChange, fn) }
}

// WithOnMoveFailed é chamado quando o servidor recusa um movimento, antes da reconstrução.
func WithOnMoveFailed(fn func(Move, error)) Option {
	return func(b *Board) { b.onMoveFailed = fn }
}

// Board aplica movimentos de forma otimista e reconcilia com o servidor.
// O snapshot só é alterado aqui, sempre sob mu.
type Board struct {
	repo LeadRepository

	mu         sync.Mutex
	snap       Snapshot
	refreshSeq uint64
	appliedSeq uint64

	// pending conta confirmações e reconstruções em andamento; idle avisa quando zera
	pending int
	idle    *sync.Cond

	onChange     []func(Snapshot)
	onMoveFailed func(Move, error)
}

func NewBoard(repo LeadRepository, opts ...Option) *Board {
	b := &Board{
		repo: repo,
		snap: emptySnapshot(),
	}
	b.idle = sync.NewCond(&b.mu)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Snapshot devolve uma cópia do quadro atual.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap.clone()
}

// Refresh descarta o estado local e reconstrói a partir da listagem do servidor.
// Se uma reconstrução iniciada depois desta já foi aplicada, o resultado desta é ignorado.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	b.refreshSeq++
	seq := b.refreshSeq
	b.mu.Unlock()

	leads, err := b.repo.ListLeads(ctx)
	if err != nil {
		logger.Logger.Warnf("⚠️ Falha ao reconstruir o quadro: %v", err)
		return fmt.Errorf("falha ao reconstruir quadro: %w", err)
	}

	snap := GroupByStage(leads)

	b.mu.Lock()
	if seq < b.appliedSeq {
		b.mu.Unlock()
		logger.Logger.Debugf("Reconstrução #%d descartada, #%d já aplicada", seq, b.appliedSeq)
		return nil
	}
	b.appliedSeq = seq
	b.snap = snap
	view := snap.clone()
	b.mu.Unlock()

	b.notify(view)
	return nil
}

// RequestMove aplica o movimento no quadro na hora e confirma com o servidor em background.
// Falha na confirmação leva a uma reconstrução completa, sem retentativa.
func (b *Board) RequestMove(ctx context.Context, m Move) error {
	if m.isNoop() {
		return nil
	}

	b.mu.Lock()
	next, err := applyMove(b.snap, m)
	if err != nil {
		b.pending++
		b.mu.Unlock()
		logger.Logger.Warnf("⚠️ %v; reconstruindo quadro", err)
		go b.rebuild(context.WithoutCancel(ctx))
		return err
	}
	b.snap = next
	view := next.clone()
	b.pending++
	b.mu.Unlock()

	b.notify(view)

	go b.confirm(context.WithoutCancel(ctx), m)

	return nil
}

// Wait bloqueia até todas as confirmações e reconstruções pendentes terminarem.
// Pode ser chamado junto com RequestMove; só retorna quando nada está pendente.
func (b *Board) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.pending > 0 {
		b.idle.Wait()
	}
}

func (b *Board) done() {
	b.mu.Lock()
	b.pending--
	if b.pending == 0 {
		b.idle.Broadcast()
	}
	b.mu.Unlock()
}

func (b *Board) confirm(ctx context.Context, m Move) {
	defer b.done()

	if err := b.repo.UpdateLeadStatus(ctx, m.LeadID, m.To); err != nil {
		logger.Logger.Warnf("❌ Servidor recusou mover %s para %s: %v", m.LeadID, m.To, err)
		if b.onMoveFailed != nil {
			b.onMoveFailed(m, err)
		}
		_ = b.Refresh(ctx)
		return
	}

	logger.Logger.Debugf("✅ Lead %s confirmado em %s", m.LeadID, m.To)
}

func (b *Board) rebuild(ctx context.Context) {
	defer b.done()
	_ = b.Refresh(ctx)
}

func (b *Board) notify(view Snapshot) {
	for _, fn := range b.onChange {
		fn(view)
	}
}

// applyMove devolve um novo snapshot; só as colunas tocadas ganham slices novos.
func applyMove(s Snapshot, m Move) (Snapshot, error) {
	violation := func(reason string) (Snapshot, error) {
		return Snapshot{}, &PreconditionViolation{LeadID: m.LeadID, Reason: reason}
	}

	if !m.From.IsBoardColumn() {
		return violation(fmt.Sprintf("coluna de origem %q não existe no quadro", m.From))
	}
	if !m.To.IsBoardColumn() {
		return violation(fmt.Sprintf("coluna de destino %q não existe no quadro", m.To))
	}

	src := s.Columns[m.From]
	if m.FromIndex < 0 || m.FromIndex >= len(src) {
		return violation(fmt.Sprintf("posição de origem %d fora da coluna %s", m.FromIndex, m.From))
	}
	if src[m.FromIndex].ID != m.LeadID {
		return violation(fmt.Sprintf("lead não está em %s[%d]", m.From, m.FromIndex))
	}
	if m.ToIndex < 0 {
		return violation(fmt.Sprintf("posição de destino %d inválida", m.ToIndex))
	}

	moved := src[m.FromIndex].Clone()
	moved.Status = m.To

	newSrc := make([]entity.Lead, 0, len(src)-1)
	newSrc = append(newSrc, src[:m.FromIndex]...)
	newSrc = append(newSrc, src[m.FromIndex+1:]...)

	columns := make(map[entity.Stage][]entity.Lead, len(s.Columns))
	for stage, col := range s.Columns {
		columns[stage] = col
	}

	dst := s.Columns[m.To]
	if m.From == m.To {
		dst = newSrc
	} else {
		columns[m.From] = newSrc
	}

	idx := min(m.ToIndex, len(dst))
	newDst := make([]entity.Lead, 0, len(dst)+1)
	newDst = append(newDst, dst[:idx]...)
	newDst = append(newDst, moved)
	newDst = append(newDst, dst[idx:]...)
	columns[m.To] = newDst

	return Snapshot{Columns: columns, Closed: s.Closed}, nil
}
