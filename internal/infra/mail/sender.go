package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/motoescola/backoffice/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var saoPaulo = loadLocation("America/Sao_Paulo")

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	To     string
	dialer dialer
	now    func() time.Time
}

// NewEmailSender envia para a caixa da equipe (to).
func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		From:   from,
		To:     to,
		dialer: gomail.NewDialer(host, port, user, password),
		now:    time.Now,
	}
}

// NotifyNewLead avisa a equipe que chegou um lead pelo formulário.
func (s *EmailSender) NotifyNewLead(_ context.Context, lead entity.Lead) error {
	body, err := newLeadBody(lead)
	if err != nil {
		return err
	}

	return s.send(fmt.Sprintf("🏍️ Novo lead: %s", lead.Name), body)
}

func newLeadBody(lead entity.Lead) (string, error) {
	return render("new_lead.html", NewLeadEmailData{
		Lead:       lead,
		CapturedAt: lead.CreatedAt.In(saoPaulo).Format("02/01/2006 15:04"),
	})
}

// SendStaleDigest manda o resumo dos leads parados na etapa há mais de since.
func (s *EmailSender) SendStaleDigest(_ context.Context, stage entity.Stage, since time.Duration, leads []entity.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	body, err := staleDigestBody(stage, since, leads, s.now())
	if err != nil {
		return err
	}

	return s.send(fmt.Sprintf("⏰ %d lead(s) aguardando em %s", len(leads), stage), body)
}

func staleDigestBody(stage entity.Stage, since time.Duration, leads []entity.Lead, now time.Time) (string, error) {
	rows := make([]StaleLeadRow, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, StaleLeadRow{
			Name:    l.Name,
			Contact: contactOf(l),
			Origin:  l.Origin,
			Waiting: humanize(now.Sub(enteredAt(l))),
		})
	}

	return render("stale_digest.html", StaleDigestEmailData{Stage: stage, Since: humanize(since), Leads: rows})
}

func (s *EmailSender) send(subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}

func render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("erro ao processar template %s: %w", name, err)
	}
	return body.String(), nil
}

func contactOf(l entity.Lead) string {
	switch {
	case l.Whatsapp != "":
		return l.Whatsapp
	case l.Phone != "":
		return l.Phone
	default:
		return l.Email
	}
}

func enteredAt(l entity.Lead) time.Time {
	if l.StageEnteredAt.IsZero() {
		return l.CreatedAt
	}
	return l.StageEnteredAt
}

func humanize(d time.Duration) string {
	days := int(d.Hours()) / 24
	if days >= 1 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
