package pipeline

import "github.com/motoescola/backoffice/internal/entity"

// Snapshot é a visão local do quadro. Não tem autoridade: na dúvida, descarta e reconstrói.
type Snapshot struct {
	// Columns tem sempre as cinco colunas do Kanban, mesmo vazias.
	Columns map[entity.Stage][]entity.Lead
	// Closed guarda FECHADO/PERDIDO fora das colunas.
	Closed []entity.Lead
}

// GroupByStage distribui os leads pelas colunas mantendo a ordem em que vieram do servidor.
// Status fora das colunas e que não seja terminal cai em NOVO_LEAD.
func GroupByStage(leads []entity.Lead) Snapshot {
	snap := emptySnapshot()

	for _, l := range leads {
		lead := l.Clone()
		switch {
		case lead.Status.IsBoardColumn():
			snap.Columns[lead.Status] = append(snap.Columns[lead.Status], lead)
		case lead.Status.IsTerminal():
			snap.Closed = append(snap.Closed, lead)
		default:
			snap.Columns[entity.InitialStage] = append(snap.Columns[entity.InitialStage], lead)
		}
	}

	return snap
}

func emptySnapshot() Snapshot {
	snap := Snapshot{
		Columns: make(map[entity.Stage][]entity.Lead, len(entity.BoardStages())),
		Closed:  []entity.Lead{},
	}
	for _, s := range entity.BoardStages() {
		snap.Columns[s] = []entity.Lead{}
	}
	return snap
}

// Len conta todos os leads, inclusive os encerrados.
func (s Snapshot) Len() int {
	n := len(s.Closed)
	for _, col := range s.Columns {
		n += len(col)
	}
	return n
}

// Find devolve coluna e posição do lead no quadro.
func (s Snapshot) Find(leadID string) (entity.Stage, int, bool) {
	for _, stage := range entity.BoardStages() {
		for i, l := range s.Columns[stage] {
			if l.ID == leadID {
				return stage, i, true
			}
		}
	}
	return "", 0, false
}

// IDs devolve os ids de uma coluna, na ordem. Útil para render e testes.
func (s Snapshot) IDs(stage entity.Stage) []string {
	col := s.Columns[stage]
	out := make([]string, len(col))
	for i, l := range col {
		out[i] = l.ID
	}
	return out
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Columns: make(map[entity.Stage][]entity.Lead, len(s.Columns)),
		Closed:  cloneLeads(s.Closed),
	}
	for stage, col := range s.Columns {
		out.Columns[stage] = cloneLeads(col)
	}
	return out
}

func cloneLeads(in []entity.Lead) []entity.Lead {
	out := make([]entity.Lead, len(in))
	for i, l := range in {
		out[i] = l.Clone()
	}
	return out
}
