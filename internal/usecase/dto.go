package usecase

import (
	"strings"
	"time"

	"github.com/motoescola/backoffice/internal/entity"
)

// CreateLeadInput é o corpo do formulário público de captura (e do cadastro manual).
type CreateLeadInput struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Email        string  `json:"email" validate:"omitempty,email"`
	Phone        string  `json:"phone" validate:"omitempty,phone"`
	Whatsapp     string  `json:"whatsapp,omitempty" validate:"omitempty,phone"`
	Interest     string  `json:"interest" validate:"max=500"`
	Origin       string  `json:"origin" validate:"max=120"`
	CourseDateID *string `json:"courseDateId,omitempty"`
}

// UpdateLeadInput é o PATCH parcial: só os campos presentes são alterados.
// String vazia em managerId/courseDateId remove a referência.
type UpdateLeadInput struct {
	Name         *string   `json:"name,omitempty"`
	Email        *string   `json:"email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Whatsapp     *string   `json:"whatsapp,omitempty"`
	Interest     *string   `json:"interest,omitempty"`
	Origin       *string   `json:"origin,omitempty"`
	Status       *string   `json:"status,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
	ManagerID    *string   `json:"managerId,omitempty"`
	CourseDateID *string   `json:"courseDateId,omitempty"`
}

func (in UpdateLeadInput) Empty() bool {
	return in.Name == nil && in.Email == nil && in.Phone == nil && in.Whatsapp == nil &&
		in.Interest == nil && in.Origin == nil && in.Status == nil && in.Notes == nil &&
		in.Tags == nil && in.ManagerID == nil && in.CourseDateID == nil
}

// StatusOnly indica o PATCH de arrastar card: só a etapa vem no corpo.
func (in UpdateLeadInput) StatusOnly() bool {
	rest := in
	rest.Status = nil
	return in.Status != nil && rest.Empty()
}

// ApplyTo aplica o patch já validado sobre o lead.
func (in UpdateLeadInput) ApplyTo(l *entity.Lead) {
	if in.Name != nil {
		l.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		l.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		l.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Whatsapp != nil {
		l.Whatsapp = strings.TrimSpace(*in.Whatsapp)
	}
	if in.Interest != nil {
		l.Interest = *in.Interest
	}
	if in.Origin != nil {
		l.Origin = *in.Origin
	}
	if in.Status != nil {
		l.Status = entity.NormalizeStage(*in.Status)
	}
	if in.Notes != nil {
		l.Notes = *in.Notes
	}
	if in.Tags != nil {
		l.Tags = cleanTags(*in.Tags)
	}
	if in.ManagerID != nil {
		v := *in.ManagerID
		l.ManagerID = &v
	}
	if in.CourseDateID != nil {
		v := *in.CourseDateID
		l.CourseDateID = &v
	}
	l.Normalize()
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

type UpdateLeadOutput struct {
	Lead *entity.Lead
	// StatusChange só vem preenchido quando a etapa mudou
	StatusChange *entity.StatusChange
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}
