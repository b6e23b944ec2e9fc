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
  /api/stock/*          Stock ledger
  /api/farmers/*        Farmers and credit balances
  /api/credits, /api/repayments
  /api/payroll/*        Payroll calculator
  /api/payment-runs/*   Payment run preview and confirmation
  /api/payments/*       Recorded payments
  Reference data:       sites, seaweed-types, providers, employees,
                        cycles, deliveries, operations

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

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
		// Stock ledger
		r.Route("/stock", func(r chi.Router) {
			r.Get("/balance", h.GetStockBalance)
			r.Get("/history", h.GetStockHistory)
			r.Post("/movements", h.CreateMovement)
			r.Post("/pressing", h.CreatePressing)
		})

		// Farmers and credit
		r.Route("/farmers", func(r chi.Router) {
			r.Get("/", h.ListFarmers)
			r.Post("/", h.CreateFarmer)
			r.Get("/{id}/credit", h.GetFarmerCredit)
		})
		r.Post("/credits", h.CreateCredit)
		r.Post("/repayments", h.CreateRepayment)

		// Payroll
		r.Post("/payroll/calculate", h.CalculatePayroll)

		// Payment runs
		r.Route("/payment-runs", func(r chi.Router) {
			r.Post("/preview", h.PreviewRun)
			r.Post("/confirm", h.ConfirmRun)
		})
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Put("/{id}/status", h.UpdatePaymentStatus)
		})

		// Reference data
		r.Route("/sites", func(r chi.Router) {
			r.Get("/", h.ListSites)
			r.Post("/", h.CreateSite)
		})
		r.Route("/seaweed-types", func(r chi.Router) {
			r.Get("/", h.ListSeaweedTypes)
			r.Post("/", h.CreateSeaweedType)
		})
		r.Route("/providers", func(r chi.Router) {
			r.Get("/", h.ListProviders)
			r.Post("/", h.CreateProvider)
		})
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
		})
		r.Post("/cycles", h.CreateCycle)
		r.Post("/deliveries", h.CreateDelivery)
		r.Post("/operations", h.CreateOperation)
	})

	return r
}
