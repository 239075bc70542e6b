package handlers

import (
	"context"
	"net/http"

	"github.com/motoescola/backoffice/internal/usecase"
)

type LoginExecutor interface {
	Execute(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error)
}

type AuthHandler struct {
	login LoginExecutor
}

func NewAuthHandler(login LoginExecutor) *AuthHandler {
	return &AuthHandler{login: login}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input usecase.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.login.Execute(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
