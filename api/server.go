/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*   Employee management, balances, statements
  /api/shifts/*      Shift registration and accrual requests
  /api/requests/*    Request approval/rejection
  /api/admin/*       Adjustments and schedule configuration

SECURITY NOTE:
  No authentication middleware. Actor identity travels in request
  bodies; a gateway in front is expected to authenticate.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/shifts", h.ListShifts)
			r.Get("/{id}/bolsa", h.GetBalance)
			r.Get("/{id}/resumen", h.GetSummary)
			r.Get("/{id}/statement.pdf", h.Statement)
			r.Get("/{id}/consistency", h.CheckConsistency)
			r.Post("/{id}/redemptions", h.RequestRedemption)
			r.Post("/{id}/redeem", h.Redeem)
		})

		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Post("/", h.RegisterShift)
			r.Get("/{id}", h.GetShift)
			r.Post("/{id}/requests", h.RequestAccrual)
		})

		// Request approval routes
		r.Route("/requests", func(r chi.Router) {
			r.Post("/{id}/approve", h.ApproveRequest)
			r.Post("/{id}/reject", h.RejectRequest)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/adjustments", h.CreateAdjustment)
			r.Put("/schedules/{area}", h.UpdateSchedule)
			r.Put("/night-window", h.UpdateNightWindow)
		})
	})

	return r
}
