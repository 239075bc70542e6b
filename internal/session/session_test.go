package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "session.json"))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	s := &Session{Token: "tok", Username: "admin", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(s))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", loaded.Token)
	assert.Equal(t, "Bearer tok", loaded.AuthorizationHeader())

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	// logout duas vezes não falha
	assert.NoError(t, store.Clear())
}

func TestStoreTreatsExpiredAsMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(&Session{Token: "old", ExpiresAt: time.Now().Add(-time.Minute)}))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStoreRejectsCorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{quebrado"), 0o600))

	_, err := NewStore(path).Load()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}

func TestNilSessionHasNoHeader(t *testing.T) {
	var s *Session
	assert.Equal(t, "", s.AuthorizationHeader())
	assert.False(t, s.Valid(time.Now()))
}
