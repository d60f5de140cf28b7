// Command create-admin registers an admin account in the identity tables.
// The address must also be listed in admin_emails to pass the access gate.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/deskfolio/deskfolio/backend/internal/service"
	"github.com/deskfolio/deskfolio/backend/internal/storage/pg"
	"github.com/deskfolio/deskfolio/backend/internal/utils/email"
	"github.com/deskfolio/deskfolio/shared/config"
	"github.com/deskfolio/deskfolio/shared/domain"
	jwt_internal "github.com/deskfolio/deskfolio/shared/jwt"
	"github.com/deskfolio/deskfolio/shared/logger"
)

func main() {
	var configFolder, address string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.StringVar(&address, "email", "", "admin email address")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")
	if address == "" || password == "" {
		fmt.Fprintln(os.Stderr, "usage: ADMIN_PASSWORD=... create-admin -email admin@example.com")
		os.Exit(2)
	}

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Log.Level, false)
	log := logger.Component("create-admin")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	storage, err := pg.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to remote store", "error", err)
		os.Exit(1)
	}
	defer storage.Cleanup()

	provider := service.NewLocalIdentityProvider(
		storage,
		email.LogSender{},
		jwt_internal.New(cfg.JwtKey(), cfg.JwtTTL()),
		service.NewMemoryRevocations(),
		&cfg.Public,
	)

	id, err := provider.CreateUser(ctx, domain.Credentials{Email: address, Password: password})
	if err != nil {
		log.Error("failed to create admin", "error", err)
		os.Exit(1)
	}
	log.Info("admin created", "id", id, "email", address)

	if !slices.Contains(cfg.Public.AdminEmails, strings.ToLower(strings.TrimSpace(address))) {
		log.Warn("address is not in admin_emails, sign-in will be denied until it is added")
	}
}
