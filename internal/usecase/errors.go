package usecase

import "errors"

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeLeadNotFound       = "LEAD_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeDatabase           = "DATABASE_ERROR"
	CodeToken              = "TOKEN_ERROR"
)

// DomainError é erro de regra de negócio: vira 4xx.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError é falha de infraestrutura (banco, fila): vira 5xx.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func notFound(id string) *DomainError {
	return &DomainError{Code: CodeLeadNotFound, Message: "lead não encontrado: " + id}
}
