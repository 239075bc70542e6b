package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var ErrNoSession = errors.New("nenhuma sessão ativa, faça login")

// Session é o contexto de autenticação do painel. É criada no login e passada
// explicitamente para quem precisa falar com a API.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.ExpiresAt)
}

// AuthorizationHeader devolve o valor do header Authorization, ou vazio sem sessão.
func (s *Session) AuthorizationHeader() string {
	if s == nil || s.Token == "" {
		return ""
	}
	return "Bearer " + s.Token
}

// Store persiste a sessão num arquivo local entre execuções.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath fica em ~/.motoescola/session.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".motoescola-session.json")
	}
	return filepath.Join(home, ".motoescola", "session.json")
}

// Load lê a sessão salva. Sessão expirada é tratada como ausente.
func (st *Store) Load() (*Session, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("erro ao ler sessão: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("sessão corrompida: %w", err)
	}

	if !s.Valid(time.Now()) {
		return nil, ErrNoSession
	}

	return &s, nil
}

func (st *Store) Save(s *Session) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0o700); err != nil {
		return fmt.Errorf("erro ao criar diretório da sessão: %w", err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("erro ao serializar sessão: %w", err)
	}

	return os.WriteFile(st.path, data, 0o600)
}

// Clear encerra a sessão (logout). Não ter sessão salva não é erro.
func (st *Store) Clear() error {
	if err := os.Remove(st.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("erro ao remover sessão: %w", err)
	}
	return nil
}
