package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/bluecarbon/registry/docs" // swagger docs

	"github.com/bluecarbon/registry/internal/api"
	"github.com/bluecarbon/registry/internal/api/handler"
	"github.com/bluecarbon/registry/internal/core/ports"
	"github.com/bluecarbon/registry/internal/core/service"
	"github.com/bluecarbon/registry/internal/infrastructure/config"
	"github.com/bluecarbon/registry/internal/infrastructure/db/memory"
	"github.com/bluecarbon/registry/internal/infrastructure/db/mongo"
	"github.com/bluecarbon/registry/internal/infrastructure/db/redis"
	"github.com/bluecarbon/registry/internal/infrastructure/queue"
	"github.com/bluecarbon/registry/pkg/logger"
)

// storage groups the repositories selected by STORAGE_DRIVER.
type storage struct {
	users     ports.UserRepository
	community ports.CommunityRepository
	audit     ports.AuditRepository
	checks    map[string]handler.Check
	close     func(ctx context.Context) error
}

// @title Blue Carbon Registry API
// @version 1.0
// @description Authentication, role-based access and community profiles for the blue carbon registry.
// @host localhost:5000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet; fall back to a plain JSON logger.
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "registry-api",
	})
	log.Info().Str("env", cfg.Env).Str("storage", cfg.StorageDriver).Msg("starting blue carbon registry API")

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}

	// Redis backs the shared rate-limit counters. Without it each instance
	// counts on its own.
	redisClient, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, rate limits are per-instance")
	} else {
		store.checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, redisClient) }
	}

	// Audit pipeline
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers,
		service.NewAuditService(store.audit, logger.Component("audit")),
		logger.Component("audit"))
	dispatcher.Start()

	tokens := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(store.users, tokens, dispatcher, service.AuthOptions{
		BcryptCost:       cfg.Auth.BcryptCost,
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
	}, logger.Component("auth"))

	router := api.NewRouter(api.Dependencies{
		Logger:          log,
		Development:     cfg.IsDevelopment(),
		CORSOrigins:     cfg.CORSOrigins,
		TrustedProxies:  cfg.TrustedProxyNets(),
		Tokens:          tokens,
		Auth:            authService,
		Community:       service.NewCommunityService(store.community, logger.Component("community")),
		Admin:           service.NewUserAdminService(store.users, logger.Component("admin")),
		APILimiter:      redis.NewRateLimitStore(redisClient, "api", cfg.RateLimit.Max, cfg.RateLimit.Window, log),
		AuthLimiter:     redis.NewRateLimitStore(redisClient, "auth", cfg.RateLimit.AuthMax, cfg.RateLimit.Window, log),
		ReadinessChecks: store.checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("audit queue not fully drained")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := store.close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("storage close failed")
	}

	log.Info().Msg("server exited gracefully")
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == "memory" {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		mem := memory.NewStore()
		return &storage{
			users:     mem.Users(),
			community: mem.Communities(),
			audit:     mem.Audit(),
			checks:    map[string]handler.Check{},
			close:     func(context.Context) error { return nil },
		}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "registry-api",
	})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	return &storage{
		users:     mongo.NewUserRepository(db),
		community: mongo.NewCommunityRepository(db),
		audit:     mongo.NewAuditRepository(db),
		checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongo.Ping(ctx, client) },
		},
		close: func(ctx context.Context) error { return client.Disconnect(ctx) },
	}, nil
}
