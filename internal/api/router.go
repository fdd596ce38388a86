/**
 * @description
 * This file sets up the HTTP router for the oracle-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies
 * middleware for logging, panic recovery, timeouts, CORS, and per-group rate
 * limiting. Signing and KYC endpoints carry separate limits because a single
 * browser session hits the oracle far more often than it submits identities.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for browser clients.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/facterra/oracle-service/internal/app"
)

// RouterConfig carries the tunables the router needs from configuration.
type RouterConfig struct {
	AllowedOrigins      []string
	RequestTimeout      time.Duration
	RateLimitWindow     time.Duration
	KYCRatePerWindow    int
	OracleRatePerWindow int
}

// Routes creates and returns the router for the oracle service.
func Routes(h *Handlers, limiter app.RateLimiter, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", h.HealthHandler)

	// Oracle signing endpoints
	r.Group(func(r chi.Router) {
		r.Use(RateLimit(limiter, "oracle", cfg.OracleRatePerWindow, cfg.RateLimitWindow))

		r.Post("/oracle/sign-issuance", h.SignIssuanceHandler)
		r.Post("/oracle/sign-payment", h.SignPaymentHandler)
	})

	// KYC endpoints
	r.Group(func(r chi.Router) {
		r.Use(RateLimit(limiter, "kyc", cfg.KYCRatePerWindow, cfg.RateLimitWindow))

		r.Post("/kyc/submit", h.SubmitKYCHandler)
		r.Get("/kyc/status/{address}", h.KYCStatusHandler)
	})

	// Read-model endpoints
	r.Get("/invoices", h.ListInvoicesHandler)
	r.Get("/invoices/{id}", h.GetInvoiceHandler)
	r.Get("/financiers/{address}/invoices", h.FinancierInvoicesHandler)
	r.Get("/analytics/summary", h.AnalyticsSummaryHandler)
	r.Get("/analytics/portfolio/{address}", h.PortfolioHandler)

	return r
}
