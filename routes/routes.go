// routes/routes.go
package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/signalworks/billing-backend/config"
	"github.com/signalworks/billing-backend/handlers"
)

// SetupRoutes assembles the router with the full middleware stack and every
// endpoint the service exposes.
func SetupRoutes(cfg *config.Config, h *handlers.Handlers) chi.Router {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(corsMiddleware(cfg.CorsAllowedOrigins))
	r.Use(securityMiddleware(cfg.Environment))

	// Health check
	r.Get("/health", h.HealthCheck)

	// Front-end pages and assets
	r.Get("/", h.IndexPage)
	r.Get("/account", h.AccountPage)
	r.Get("/prices", h.PricesPage)
	r.Get("/config", h.GetConfig)
	if cfg.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.Handle("/static/*", fs)
	}

	// Billing
	r.Post("/create-customer", h.CreateCustomer)
	r.Post("/create-subscription", h.CreateSubscription)
	r.Post("/retry-invoice", h.RetryInvoice)
	r.Post("/retrieve-upcoming-invoice", h.RetrieveUpcomingInvoice)
	r.Post("/cancel-subscription", h.CancelSubscription)
	r.Post("/update-subscription", h.UpdateSubscription)
	r.Post("/retrieve-customer-payment-method", h.RetrievePaymentMethod)
	r.Post("/check-coupon", h.CheckCoupon)

	// Reconciliation and local records
	r.Post("/customer", h.ReconcileCustomer)
	r.Post("/check-ip", h.CheckIP)
	r.Post("/get-ip", h.GetIP)
	r.Post("/remove-ip", h.RemoveIP)
	r.Post("/result", h.SaveResult)
	r.Post("/message", h.Message)

	// Webhook handler
	r.Post("/webhook", h.HandleStripeWebhook)

	return r
}

// corsMiddleware handles CORS headers
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			for _, allowedOrigin := range allowedOrigins {
				if allowedOrigin == "*" || allowedOrigin == origin {
					allowed = true
					break
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token, X-Requested-With")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// securityMiddleware adds security headers
func securityMiddleware(environment string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// Only set HSTS in production
			if environment == "production" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
