// Package api exposes the accounting engine and store over HTTP.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Tiliavir/arbeitszeit/internal/auth"
)

// NewRouter wires every route of h. Admin routes sit behind gate; CORS is
// enabled only when allowedOrigins is non-empty.
func NewRouter(h *Handler, gate auth.Gate, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/holidays/{year}", h.ListHolidays)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/week", h.GetWeek)
				r.Get("/months/{month}", h.GetMonth)
				r.Get("/months/{month}/export", h.ExportMonth)
				r.Get("/months/{month}/report", h.ReportMonth)
				r.Put("/days/{date}", h.PutDay)
				r.Delete("/days/{date}", h.DeleteDay)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(gate.Middleware)
			r.Get("/years/{year}", h.GetYear)
			r.Put("/settings/{name}", h.PutSettings)
		})
	})

	return r
}
