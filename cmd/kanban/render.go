package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/pipeline"
)

func renderBoard(w io.Writer, snap pipeline.Snapshot) error {
	for _, stage := range entity.BoardStages() {
		leads := snap.Columns[stage]
		fmt.Fprintf(w, "\n== %s (%d)\n", stage, len(leads))
		if err := renderLeads(w, leads); err != nil {
			return err
		}
	}

	if len(snap.Closed) > 0 {
		fmt.Fprintf(w, "\n== encerrados (%d)\n", len(snap.Closed))
		return renderLeads(w, snap.Closed)
	}
	return nil
}

func renderLeads(w io.Writer, leads []entity.Lead) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, l := range leads {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", i, l.ID, l.Name, contact(l), l.Interest)
	}
	return tw.Flush()
}

func renderHistory(w io.Writer, changes []entity.StatusChange) error {
	if len(changes) == 0 {
		_, err := fmt.Fprintln(w, "sem trocas de etapa")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range changes {
		fmt.Fprintf(tw, "%s\t%s → %s\n", c.ChangedAt.Local().Format("02/01/2006 15:04"), c.From, c.To)
	}
	return tw.Flush()
}

func contact(l entity.Lead) string {
	switch {
	case l.Whatsapp != "":
		return l.Whatsapp
	case l.Phone != "":
		return l.Phone
	default:
		return l.Email
	}
}
