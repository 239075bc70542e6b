package entity

import "strings"

// Stage é a etapa do funil em que o lead está.
type Stage string

const (
	StageNovoLead        Stage = "NOVO_LEAD"
	StageContatoIniciado Stage = "CONTATO_INICIADO"
	StageQualificado     Stage = "QUALIFICADO"
	StagePropostaEnviada Stage = "PROPOSTA_ENVIADA"
	StageNegociacao      Stage = "NEGOCIACAO"

	// Terminais: só chegam pelo formulário de edição, não viram coluna no Kanban
	StageFechado Stage = "FECHADO"
	StagePerdido Stage = "PERDIDO"
)

// InitialStage é onde todo lead novo entra.
const InitialStage = StageNovoLead

var boardStages = []Stage{
	StageNovoLead,
	StageContatoIniciado,
	StageQualificado,
	StagePropostaEnviada,
	StageNegociacao,
}

var terminalStages = []Stage{StageFechado, StagePerdido}

// BoardStages devolve as colunas do Kanban na ordem do funil.
func BoardStages() []Stage {
	out := make([]Stage, len(boardStages))
	copy(out, boardStages)
	return out
}

// AllStages devolve as sete etapas, colunas primeiro e terminais depois.
func AllStages() []Stage {
	out := make([]Stage, 0, len(boardStages)+len(terminalStages))
	out = append(out, boardStages...)
	return append(out, terminalStages...)
}

func (s Stage) IsBoardColumn() bool {
	for _, b := range boardStages {
		if s == b {
			return true
		}
	}
	return false
}

func (s Stage) IsTerminal() bool {
	return s == StageFechado || s == StagePerdido
}

func (s Stage) Valid() bool {
	return s.IsBoardColumn() || s.IsTerminal()
}

func (s Stage) String() string {
	return string(s)
}

// ParseStage aceita o valor exato da etapa (ignorando espaços nas pontas).
func ParseStage(raw string) (Stage, bool) {
	s := Stage(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", false
	}
	return s, true
}

// NormalizeStage cai em NOVO_LEAD para qualquer status vazio ou desconhecido.
func NormalizeStage(raw string) Stage {
	if s, ok := ParseStage(raw); ok {
		return s
	}
	return InitialStage
}
