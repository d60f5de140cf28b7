package setup

import (
	"context"
	"errors"
	"time"

	"github.com/deskfolio/deskfolio/backend/internal/handler"
	"github.com/deskfolio/deskfolio/backend/internal/service"
	"github.com/deskfolio/deskfolio/backend/internal/storage/fs"
	"github.com/deskfolio/deskfolio/backend/internal/storage/pg"
	"github.com/deskfolio/deskfolio/backend/internal/storage/redis"
	"github.com/deskfolio/deskfolio/backend/internal/utils/email"
	"github.com/deskfolio/deskfolio/shared/config"
	"github.com/deskfolio/deskfolio/shared/domain"
	jwt_internal "github.com/deskfolio/deskfolio/shared/jwt"
	"github.com/deskfolio/deskfolio/shared/logger"
	"github.com/deskfolio/deskfolio/shared/middleware"
	"github.com/deskfolio/deskfolio/shared/middleware/metrics"
)

const startupPingTimeout = 5 * time.Second

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Fallback       *fs.Storage
	Revocations    service.Revocations
	Auth           service.AuthService
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth

	closers []func() error
	cancel  context.CancelFunc
}

// SetupDependencies initializes all dependencies required for the application.
// An unreachable remote store is not fatal: writes fall back to the local slot
// until it comes back.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	log := logger.Component("setup")
	ctx, cancel := context.WithCancel(ctx)
	deps := &Dependencies{Config: cfg, cancel: cancel}

	storage, err := pg.Open(cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	deps.Storage = storage
	deps.closers = append(deps.closers, storage.Cleanup)

	pingCtx, pingCancel := context.WithTimeout(ctx, startupPingTimeout)
	if err := storage.Ping(pingCtx); err != nil {
		log.Warn("remote store unreachable at startup, submissions will be saved locally", "error", err)
	}
	pingCancel()

	fallback, err := fs.New(cfg.Public.Fallback.Dir, cfg.Public.FallbackSlot(), cfg.Public.Location())
	if err != nil {
		deps.Cleanup()
		return nil, err
	}
	deps.Fallback = fallback

	revocations, err := newRevocations(ctx, cfg)
	if err != nil {
		deps.Cleanup()
		return nil, err
	}
	deps.Revocations = revocations
	if c, ok := revocations.(*redis.RevocationStore); ok {
		deps.closers = append(deps.closers, c.Close)
	}

	jwt := jwt_internal.New(cfg.JwtKey(), cfg.JwtTTL())
	gate := service.NewGate(cfg.Public.AdminEmails)
	provider := service.NewLocalIdentityProvider(storage, newEmail(cfg), jwt, revocations, &cfg.Public)

	auth := service.NewAuth(provider, gate)
	auth.Subscribe(recordSessionEvent)
	deps.Auth = auth

	submissions := service.NewSubmission(storage, fallback, cfg.Public.Location())
	deps.Handler = handler.New(submissions, auth, storage, cfg)
	deps.AuthMiddleware = middleware.NewAuth(jwt, revocations, gate, cfg.Public.SecureCookies)

	log.Info("dependencies ready",
		"fallback_slot", fallback.Path(),
		"revocation_backend", cfg.Public.RevocationBackend(),
		"admins", len(cfg.Public.AdminEmails))
	return deps, nil
}

// Cleanup stops background work and closes every store handle.
func (d *Dependencies) Cleanup() error {
	if d.cancel != nil {
		d.cancel()
	}
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

func newRevocations(ctx context.Context, cfg *config.Config) (service.Revocations, error) {
	if cfg.Public.RevocationBackend() == "redis" {
		return redis.New(ctx, cfg.Private.Redis)
	}
	memory := service.NewMemoryRevocations()
	interval := cfg.Public.Revocation.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	memory.StartSweeper(ctx, interval)
	return memory, nil
}

func newEmail(cfg *config.Config) service.Email {
	if cfg.Private.Email.SMTPServer == "" {
		logger.Component("setup").Warn("smtp is not configured, password reset mail will only be logged")
		return email.LogSender{}
	}
	return email.New(&cfg.Private.Email)
}

func recordSessionEvent(ev domain.SessionEvent) {
	metrics.SessionTransitionsTotal.WithLabelValues(ev.To.String()).Inc()
	logger.Component("session").Info("session transition", "email", ev.Email, "from", ev.From.String(), "to", ev.To.String())
}
