package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/motoescola/backoffice/internal/logger"
)

// LoginUseCase autentica o administrador único configurado por ambiente.
type LoginUseCase struct {
	Username string
	Password string
	Tokens   TokenIssuer
}

func NewLoginUseCase(username, password string, tokens TokenIssuer) *LoginUseCase {
	return &LoginUseCase{Username: username, Password: password, Tokens: tokens}
}

func (uc *LoginUseCase) Execute(_ context.Context, input LoginInput) (*LoginOutput, error) {
	if errs := structErrors(validate.Struct(input)); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(uc.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(input.Password), []byte(uc.Password)) == 1
	if !userOK || !passOK {
		logger.Logger.Warnf("🔒 Login recusado para '%s'", input.Username)
		return nil, &DomainError{Code: CodeInvalidCredentials, Message: "usuário ou senha inválidos"}
	}

	token, exp, err := uc.Tokens.Issue(input.Username)
	if err != nil {
		return nil, &TechnicalError{Code: CodeToken, Message: fmt.Sprintf("erro ao gerar token: %v", err)}
	}

	return &LoginOutput{Token: token, Username: input.Username, ExpiresAt: exp}, nil
}
