package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewJWTManager("segredo", time.Hour)

	token, exp, err := m.Issue("admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	user, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", user)
}

func TestParseRejectsOtherSecret(t *testing.T) {
	token, _, err := NewJWTManager("a", time.Hour).Issue("admin")
	require.NoError(t, err)

	_, err = NewJWTManager("b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewJWTManager("segredo", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.Issue("admin")
	require.NoError(t, err)

	_, err = NewJWTManager("segredo", time.Minute).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNoneAlg(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "admin", Issuer: issuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager("segredo", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewJWTManager("segredo", time.Hour).Parse("nao.e.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
