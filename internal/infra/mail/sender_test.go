package mail

import (
	"context"
	"errors"
	"mime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/motoescola/backoffice/internal/entity"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

var fixedNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestSender(d *fakeDialer) *EmailSender {
	s := NewEmailSender("localhost", 25, "", "", "bot@motoescola.com", "equipe@motoescola.com")
	s.dialer = d
	s.now = func() time.Time { return fixedNow }
	return s
}

// subjectOf devolve o assunto já decodificado (o gomail guarda em RFC 2047).
func subjectOf(t *testing.T, m *gomail.Message) string {
	t.Helper()
	raw := m.GetHeader("Subject")
	require.Len(t, raw, 1)
	subject, err := new(mime.WordDecoder).DecodeHeader(raw[0])
	require.NoError(t, err)
	return subject
}

func TestNotifyNewLead(t *testing.T) {
	d := &fakeDialer{}
	s := newTestSender(d)

	err := s.NotifyNewLead(context.Background(), entity.Lead{ID: "l1", Name: "Carlos", CreatedAt: fixedNow})

	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"equipe@motoescola.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"bot@motoescola.com"}, d.sent[0].GetHeader("From"))
	assert.Equal(t, "🏍️ Novo lead: Carlos", subjectOf(t, d.sent[0]))
}

func TestNewLeadBodyEscapesInput(t *testing.T) {
	created := time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC)

	body, err := newLeadBody(entity.Lead{
		Name:      "Carlos <script>",
		Whatsapp:  "11988887777",
		Origin:    "instagram",
		CreatedAt: created,
	})

	require.NoError(t, err)
	assert.Contains(t, body, "instagram")
	assert.Contains(t, body, "11988887777")
	assert.Contains(t, body, created.In(saoPaulo).Format("02/01/2006 15:04"))
	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "Telefone")
}

func TestStaleDigestBody(t *testing.T) {
	leads := []entity.Lead{
		{Name: "Ana", Phone: "1133334444", CreatedAt: fixedNow.Add(-72 * time.Hour)},
		{Name: "Bia", Email: "bia@x.com", CreatedAt: fixedNow.Add(-10 * time.Hour)},
	}

	body, err := staleDigestBody(entity.StageNovoLead, 48*time.Hour, leads, fixedNow)

	require.NoError(t, err)
	assert.Contains(t, body, "NOVO_LEAD")
	assert.Contains(t, body, "1133334444")
	assert.Contains(t, body, "3d")
	assert.Contains(t, body, "bia@x.com")
	assert.Contains(t, body, "10h")
	assert.Contains(t, body, "há mais de 2d sem")
	assert.NotContains(t, body, "48h0m0s")
}

func TestStaleDigestCountsFromStageEntry(t *testing.T) {
	// criado há 30 dias, mas voltou para a etapa há 50 horas
	leads := []entity.Lead{{
		Name:           "Caio",
		Email:          "caio@x.com",
		CreatedAt:      fixedNow.Add(-30 * 24 * time.Hour),
		StageEnteredAt: fixedNow.Add(-50 * time.Hour),
	}}

	body, err := staleDigestBody(entity.StageNovoLead, 48*time.Hour, leads, fixedNow)

	require.NoError(t, err)
	assert.Contains(t, body, "<td>2d</td>")
	assert.NotContains(t, body, "30d")
}

func TestSendStaleDigest(t *testing.T) {
	d := &fakeDialer{}
	s := newTestSender(d)

	require.NoError(t, s.SendStaleDigest(context.Background(), entity.StageNovoLead, time.Hour, nil))
	assert.Empty(t, d.sent)

	leads := []entity.Lead{{Name: "Ana", CreatedAt: fixedNow.Add(-50 * time.Hour)}}
	require.NoError(t, s.SendStaleDigest(context.Background(), entity.StageNovoLead, 48*time.Hour, leads))
	require.Len(t, d.sent, 1)
	assert.Equal(t, "⏰ 1 lead(s) aguardando em NOVO_LEAD", subjectOf(t, d.sent[0]))
}

func TestSendWrapsSMTPError(t *testing.T) {
	boom := errors.New("421 try later")
	s := newTestSender(&fakeDialer{err: boom})

	err := s.NotifyNewLead(context.Background(), entity.Lead{Name: "Ana"})
	assert.ErrorIs(t, err, boom)
}
