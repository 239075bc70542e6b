package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/motoescola/backoffice/internal/infra/http/middleware"
)

type Router struct {
	Leads          *LeadHandler
	Auth           *AuthHandler
	Health         *HealthHandler
	Hub            *Hub
	Tokens         middleware.TokenParser
	AllowedOrigins []string
}

func (rt Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/auth/login", rt.Auth.Login)
	r.Post("/leads", rt.Leads.CaptureLead)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(rt.Tokens))

		r.Get("/ws/leads", rt.Hub.ServeWS)

		r.Get("/leads", rt.Leads.List)
		r.Get("/leads/{id}", rt.Leads.Get)
		r.Patch("/leads/{id}", rt.Leads.Update)
		r.Delete("/leads/{id}", rt.Leads.Delete)
		r.Get("/leads/{id}/history", rt.Leads.History)
	})

	return r
}
