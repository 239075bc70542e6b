package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoescola/backoffice/internal/config"
	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/session"
)

// fakeAPI guarda os leads em memória e imita as rotas usadas pelo CLI.
type fakeAPI struct {
	mu        sync.Mutex
	leads     []entity.Lead
	rejectAll bool
	patches   []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/auth/login" {
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "s3nha" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"INVALID_CREDENTIALS","message":"usuário ou senha inválidos"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok", "username": in["username"], "expiresAt": time.Now().Add(time.Hour),
		})
		return
	}

	if r.Header.Get("Authorization") != "Bearer tok" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/leads":
		json.NewEncoder(w).Encode(f.leads)
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/leads/"):
		id := strings.TrimPrefix(r.URL.Path, "/leads/")
		f.patches = append(f.patches, id)
		if f.rejectAll {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		for i := range f.leads {
			if f.leads[i].ID == id {
				f.leads[i].Status = entity.Stage(in["status"])
				json.NewEncoder(w).Encode(f.leads[i])
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case strings.HasSuffix(r.URL.Path, "/history"):
		w.Write([]byte(`[{"id":"h1","leadId":"a","from":"NOVO_LEAD","to":"QUALIFICADO","changedAt":"2026-01-01T10:00:00Z"}]`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeAPI) reject() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectAll = true
}

func (f *fakeAPI) patched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.patches...)
}

type harness struct {
	api         *fakeAPI
	url         string
	sessionPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := &fakeAPI{leads: []entity.Lead{
		{ID: "a", Name: "Ana", Status: entity.StageNovoLead},
		{ID: "b", Name: "Bia", Status: entity.StageQualificado},
		{ID: "c", Name: "Caio", Status: entity.StageFechado},
	}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return &harness{api: api, url: srv.URL, sessionPath: filepath.Join(t.TempDir(), "session.json")}
}

func (h *harness) run(stdin string, args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	full := append([]string{"-api", h.url, "-session", h.sessionPath}, args...)
	code := run(context.Background(), config.Config{HTTPTimeout: 2 * time.Second}, full, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	code, _, stderr := h.run("", "login", "-u", "admin", "-p", "s3nha")
	require.Equal(t, 0, code, stderr)
}

func TestLoginSavesSessionAndLogoutClears(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run("s3nha\n", "login", "-u", "admin")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "sessão aberta para admin")

	sess, err := session.NewStore(h.sessionPath).Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)

	code, _, _ = h.run("", "logout")
	require.Equal(t, 0, code)
	_, err = session.NewStore(h.sessionPath).Load()
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run("", "login", "-u", "admin", "-p", "errada")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "login")
}

func TestBoardRequiresSession(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run("", "board")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "kanban login")
}

func TestBoardShowsColumnsAndClosed(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	code, out, _ := h.run("", "board")

	require.Equal(t, 0, code)
	assert.Contains(t, out, "== NOVO_LEAD (1)")
	assert.Contains(t, out, "== QUALIFICADO (1)")
	assert.Contains(t, out, "== encerrados (1)")
	assert.Contains(t, out, "Caio")
}

func TestMoveConfirmed(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	code, out, stderr := h.run("", "move", "a", "QUALIFICADO", "0")

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "== QUALIFICADO (2)")
	assert.Contains(t, out, "== NOVO_LEAD (0)")
	assert.Equal(t, []string{"a"}, h.api.patched())
}

func TestMoveToSameColumnEndIsNoop(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	code, out, stderr := h.run("", "move", "b", "QUALIFICADO")

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "== QUALIFICADO (1)")
	assert.Empty(t, h.api.patched())
}

func TestMoveRejectedReloadsBoard(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.api.reject()

	code, out, _ := h.run("", "move", "a", "NEGOCIACAO")

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "servidor recusou")
	// quadro recarregado do servidor: lead volta para NOVO_LEAD
	assert.Contains(t, out, "== NOVO_LEAD (1)")
	assert.Contains(t, out, "== NEGOCIACAO (0)")
}

func TestMoveValidation(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	for _, args := range [][]string{
		{"move", "a"},
		{"move", "a", "FECHADO"},
		{"move", "a", "INEXISTENTE"},
		{"move", "zzz", "QUALIFICADO"},
		{"move", "a", "QUALIFICADO", "x"},
		{"move", "a", "QUALIFICADO", "-1"},
	} {
		code, _, _ := h.run("", args...)
		assert.Equal(t, 1, code, "%v", args)
	}
	assert.Empty(t, h.api.patched())
}

func TestHistory(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	code, out, _ := h.run("", "history", "a")

	require.Equal(t, 0, code)
	assert.Contains(t, out, "NOVO_LEAD → QUALIFICADO")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run("", "dance")

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "comando desconhecido")
}
