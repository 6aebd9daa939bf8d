package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stackover-dev/stackover/internal/config"
	"github.com/stackover-dev/stackover/internal/handler"
	"github.com/stackover-dev/stackover/internal/middleware"
	"github.com/stackover-dev/stackover/internal/middleware/metrics"
	"github.com/stackover-dev/stackover/internal/middleware/ratelimiter"
)

func New(h *handler.Handler, auth *middleware.Auth, cfg *config.Config) *chi.Mux {
	// Limits for credential endpoints. One bucket per client IP, one per
	// target email for reset requests so a single address can't be flooded
	// with codes from many IPs.
	loginLimiter := ratelimiter.New(0.5, 5, time.Hour)
	resetLimiter := ratelimiter.New(1.0/60, 3, time.Hour)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(chi_middleware.RequestID)
	r.Use(chi_middleware.RealIP)
	r.Use(chi_middleware.Recoverer)
	r.Use(middleware.SecurityHeadersWithCSP(cfg.Public.SecureCookies, ""))
	r.Use(metrics.Middleware)

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)

			r.With(middleware.RateLimit(loginLimiter, middleware.GetIP)).
				Post("/login", h.Login)

			r.Post("/logout", h.Logout)

			r.With(middleware.RateLimit(resetLimiter, middleware.GetEmailFromBody)).
				Post("/password-reset", h.RequestPasswordReset)
			r.With(middleware.RateLimit(loginLimiter, middleware.GetIP)).
				Post("/password-reset/confirm", h.ConfirmPasswordReset)
		})

		// Reading is open to everyone; the user, when present, is
		// attached for handlers that care.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth())
			r.Get("/questions", h.ListQuestions)
			r.Get("/questions/{questionId}", h.GetQuestion)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.NeedAuth())
			r.Get("/me", h.Me)
			r.Put("/users/{userId}", h.UpdateProfile)
			r.Post("/questions", h.CreateQuestion)
			r.Delete("/questions/{questionId}", h.DeleteQuestion)
			r.Post("/questions/{questionId}/answers", h.CreateAnswer)
			r.Delete("/answers/{answerId}", h.DeleteAnswer)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	return r
}
