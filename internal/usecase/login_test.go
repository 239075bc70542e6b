package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	uc := NewLoginUseCase("admin", "s3nha", stubIssuer{token: "jwt-token"})

	out, err := uc.Execute(context.Background(), LoginInput{Username: "admin", Password: "s3nha"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", out.Token)
	assert.Equal(t, "admin", out.Username)

	_, err = uc.Execute(context.Background(), LoginInput{Username: "admin", Password: "errada"})
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeInvalidCredentials, de.Code)

	_, err = uc.Execute(context.Background(), LoginInput{Username: "admin"})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeValidation, de.Code)
}

func TestLoginIssuerFailure(t *testing.T) {
	uc := NewLoginUseCase("admin", "s3nha", stubIssuer{err: errors.New("boom")})

	_, err := uc.Execute(context.Background(), LoginInput{Username: "admin", Password: "s3nha"})

	assert.True(t, IsTechnicalError(err))
}
