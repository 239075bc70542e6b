package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/infra/http/middleware"
	"github.com/motoescola/backoffice/internal/usecase"
)

type LeadCapturer interface {
	Execute(ctx context.Context, input usecase.CreateLeadInput) (*entity.Lead, error)
}

type LeadManager interface {
	List(ctx context.Context) ([]entity.Lead, error)
	Get(ctx context.Context, id string) (*entity.Lead, error)
	Update(ctx context.Context, id string, input usecase.UpdateLeadInput) (*usecase.UpdateLeadOutput, error)
	Delete(ctx context.Context, id string) error
	History(ctx context.Context, id string) ([]entity.StatusChange, error)
}

type LeadHandler struct {
	capture     LeadCapturer
	manage      LeadManager
	rateLimiter *RateLimiter
}

func NewLeadHandler(capture LeadCapturer, manage LeadManager, limiter *RateLimiter) *LeadHandler {
	return &LeadHandler{
		capture:     capture,
		manage:      manage,
		rateLimiter: limiter,
	}
}

// CaptureLead é o endpoint público do formulário do site.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")
		return
	}

	var input usecase.CreateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.capture.Execute(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	middleware.RecordLeadCaptured(lead.Origin)
	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.manage.List(r.Context())
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.manage.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.manage.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	if out.StatusChange != nil {
		middleware.RecordStageTransition(string(out.StatusChange.From), string(out.StatusChange.To))
	}
	writeJSON(w, http.StatusOK, out.Lead)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.manage.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeUsecaseError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LeadHandler) History(w http.ResponseWriter, r *http.Request) {
	changes, err := h.manage.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}
