package handler

import (
	"context"

	"github.com/deskfolio/deskfolio/backend/internal/service"
	"github.com/deskfolio/deskfolio/shared/config"
)

// HealthChecker reports whether a dependency can serve requests.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	submissions service.SubmissionService
	auth        service.AuthService
	health      HealthChecker
	cfg         *config.Config
}

func New(submissions service.SubmissionService, auth service.AuthService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{
		submissions: submissions,
		auth:        auth,
		health:      health,
		cfg:         cfg,
	}
}
