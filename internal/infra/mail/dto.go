package mail

import (
	"github.com/motoescola/backoffice/internal/entity"
)

type NewLeadEmailData struct {
	Lead       entity.Lead
	CapturedAt string
}

type StaleDigestEmailData struct {
	Stage entity.Stage
	Since string
	Leads []StaleLeadRow
}

type StaleLeadRow struct {
	Name    string
	Contact string
	Origin  string
	Waiting string
}
