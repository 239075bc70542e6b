package leadapi

import (
	"errors"
	"fmt"
)

// TransportError cobre falha de rede, status inesperado e corpo que não decodifica.
// StatusCode é 0 quando nem houve resposta.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("leadapi %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("leadapi %s: status %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsUnauthorized indica token ausente, inválido ou expirado.
func IsUnauthorized(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.StatusCode == 401
}
