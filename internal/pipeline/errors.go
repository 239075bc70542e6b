package pipeline

import (
	"errors"
	"fmt"
)

// PreconditionViolation indica um movimento que não bate com o quadro local.
// Só acontece se a UI pedir algo que ela mesma não renderizou; a resposta é reconstruir.
type PreconditionViolation struct {
	LeadID string
	Reason string
}

func (e *PreconditionViolation) Error() string {
	return fmt.Sprintf("movimento inválido para lead %s: %s", e.LeadID, e.Reason)
}

func IsPreconditionViolation(err error) bool {
	var pv *PreconditionViolation
	return errors.As(err, &pv)
}
