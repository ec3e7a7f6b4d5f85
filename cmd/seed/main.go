// Command seed creates the initial admin account. Admins cannot sign up
// through the public API, so every deployment runs this once.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
	"github.com/bluecarbon/registry/internal/infrastructure/config"
	"github.com/bluecarbon/registry/internal/infrastructure/db/mongo"
	"github.com/bluecarbon/registry/pkg/logger"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "registry-seed"})

	if cfg.Seed.AdminPassword == "" {
		log.Fatal().Msg("SEED_ADMIN_PASSWORD is required")
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "registry-seed"})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	created, err := seedAdmin(ctx, mongo.NewUserRepository(db), cfg.Seed, cfg.Auth.BcryptCost)
	switch {
	case err != nil:
		log.Fatal().Err(err).Msg("seed failed")
	case !created:
		log.Info().Str("email", cfg.Seed.AdminEmail).Msg("admin already exists, nothing to do")
	default:
		log.Info().Str("email", cfg.Seed.AdminEmail).Msg("admin account created")
	}
}

// seedAdmin inserts the admin described by sc unless the email is taken.
func seedAdmin(ctx context.Context, repo ports.UserRepository, sc config.SeedConfig, cost int) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(sc.AdminPassword), cost)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	_, err = repo.Create(ctx, &domain.User{
		FirstName:    sc.AdminFirstName,
		LastName:     sc.AdminLastName,
		Email:        domain.NormalizeEmail(sc.AdminEmail),
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsVerified:   true,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrEmailTaken) {
		return false, nil
	}
	return err == nil, err
}
