package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deskfolio/deskfolio/backend/internal/setup"
	"github.com/deskfolio/deskfolio/shared/csrf"
	"github.com/deskfolio/deskfolio/shared/logger"
	mw "github.com/deskfolio/deskfolio/shared/middleware"
	"github.com/deskfolio/deskfolio/shared/middleware/metrics"
	rl "github.com/deskfolio/deskfolio/shared/middleware/ratelimiter"
)

// New creates and configures a chi router with all the routes.
// IMPORTANT! ratelimiters set with .Use limit requests for all endpoints of that group combined
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()
	cfg := deps.Config.Public

	requestLogger := httplog.NewLogger("deskfolio-api", httplog.Options{
		JSON:             cfg.Log.JSON,
		LogLevel:         logger.ParseLevel(cfg.Log.Level),
		Concise:          true,
		MessageFieldName: "msg",
		QuietDownRoutes:  []string{"/health", "/ready", "/metrics"},
		QuietDownPeriod:  time.Minute,
	})

	r.Use(chimw.RequestID)
	r.Use(httplog.RequestLogger(requestLogger))
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", csrf.HeaderName},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.SecurityHeaders(cfg.SecureCookies, mw.APIContentSecurityPolicy))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		// Public contact form
		v1.Group(func(form chi.Router) {
			form.Use(mw.RateLimit(rl.New(5.0/60, 5, time.Hour), mw.GetIP)) // 5 per minute by IP
			form.Use(mw.GlobalRateLimit(rl.Rps100()))
			form.Post("/submissions", h.CreateSubmission)
		})

		v1.Route("/auth", func(auth chi.Router) {
			auth.Group(func(login chi.Router) {
				login.Use(mw.RateLimit(rl.OnceInSecond(), mw.GetIP))
				login.Use(mw.GlobalRateLimit(rl.Rps100()))
				login.Post("/login", h.Login)
			})

			// Sends mail, limited per address and per IP
			auth.Group(func(reset chi.Router) {
				reset.Use(mw.RateLimit(rl.New(1.0/60, 1, time.Hour), mw.GetEmailFromBody))
				reset.Use(mw.RateLimit(rl.New(1.0/10, 3, time.Hour), mw.GetIP))
				reset.Use(mw.GlobalRateLimit(rl.Rps100()))
				reset.Post("/password_reset", h.PasswordReset)
			})

			// stricter limits to prevent brute force of the code
			auth.Group(func(confirm chi.Router) {
				confirm.Use(mw.RateLimit(rl.New(5.0/600, 5, time.Hour), mw.GetEmailFromBody)) // 5 attempts per 10 minutes by email
				confirm.Use(mw.RateLimit(rl.OnceInSecond(), mw.GetIP))
				confirm.Post("/password_reset/confirm", h.ConfirmPasswordReset)
			})

			auth.Group(func(session chi.Router) {
				session.Use(authMw.NeedAuth())
				session.Use(mw.CSRF)
				session.Post("/logout", h.Logout)
				session.Get("/me", h.Me)
			})
		})

		v1.Route("/admin", func(admin chi.Router) {
			admin.Use(authMw.AdminOnly())
			admin.Use(mw.CSRF)
			admin.Get("/submissions", h.ListSubmissions)
			admin.Get("/submissions/export", h.ExportSubmissions)
			admin.Delete("/submissions/{id}", h.DeleteSubmission)
			admin.Get("/fallback", h.ListFallback)
			admin.Get("/fallback/export", h.ExportFallback)
		})
	})

	return r
}
