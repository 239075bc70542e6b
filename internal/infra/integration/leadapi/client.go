package leadapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/session"
	"github.com/motoescola/backoffice/internal/usecase"
)

const maxErrorBody = 1 << 10

// Client fala com o serviço de leads. A sessão é passada explicitamente.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
}

func NewClient(baseURL string, timeout time.Duration, sess *session.Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: sess,
	}
}

// WithSession devolve uma cópia do client usando outra sessão.
func (c *Client) WithSession(sess *session.Session) *Client {
	cp := *c
	cp.session = sess
	return &cp
}

// ListLeads devolve todos os leads na ordem do servidor, com status normalizado.
func (c *Client) ListLeads(ctx context.Context) ([]entity.Lead, error) {
	var leads []entity.Lead
	if err := c.do(ctx, "list leads", http.MethodGet, "/leads", nil, http.StatusOK, &leads); err != nil {
		return nil, err
	}

	for i := range leads {
		if leads[i].ID == "" {
			return nil, &TransportError{Op: "list leads", StatusCode: http.StatusOK, Err: fmt.Errorf("lead na posição %d sem id", i)}
		}
		leads[i].Normalize()
	}
	if leads == nil {
		leads = []entity.Lead{}
	}

	return leads, nil
}

func (c *Client) UpdateLeadStatus(ctx context.Context, id string, status entity.Stage) error {
	s := string(status)
	_, err := c.UpdateLead(ctx, id, usecase.UpdateLeadInput{Status: &s})
	return err
}

func (c *Client) CreateLead(ctx context.Context, input usecase.CreateLeadInput) (*entity.Lead, error) {
	var lead entity.Lead
	if err := c.do(ctx, "create lead", http.MethodPost, "/leads", input, http.StatusCreated, &lead); err != nil {
		return nil, err
	}
	lead.Normalize()
	return &lead, nil
}

func (c *Client) UpdateLead(ctx context.Context, id string, input usecase.UpdateLeadInput) (*entity.Lead, error) {
	var lead entity.Lead
	if err := c.do(ctx, "update lead", http.MethodPatch, leadPath(id), input, http.StatusOK, &lead); err != nil {
		return nil, err
	}
	lead.Normalize()
	return &lead, nil
}

func (c *Client) DeleteLead(ctx context.Context, id string) error {
	return c.do(ctx, "delete lead", http.MethodDelete, leadPath(id), nil, http.StatusNoContent, nil)
}

func (c *Client) GetHistory(ctx context.Context, id string) ([]entity.StatusChange, error) {
	var changes []entity.StatusChange
	if err := c.do(ctx, "lead history", http.MethodGet, leadPath(id)+"/history", nil, http.StatusOK, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// Login troca usuário e senha por uma sessão nova.
func (c *Client) Login(ctx context.Context, username, password string) (*session.Session, error) {
	var out usecase.LoginOutput
	in := usecase.LoginInput{Username: username, Password: password}
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", in, http.StatusOK, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &TransportError{Op: "login", StatusCode: http.StatusOK, Err: errors.New("resposta sem token")}
	}
	return &session.Session{Token: out.Token, Username: out.Username, ExpiresAt: out.ExpiresAt}, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h := c.session.AuthorizationHeader(); h != "" {
		req.Header.Set("Authorization", h)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(errorMessage(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// errorMessage extrai "message" do corpo de erro da API; senão usa o texto cru.
func errorMessage(body []byte) string {
	var apiErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "resposta sem corpo"
}

func leadPath(id string) string {
	return "/leads/" + url.PathEscape(id)
}
