package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=5000"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	CORSOrigins     []string      `env:"CORS_ORIGINS,     default=http://localhost:3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`
	AuditWorkers    int           `env:"AUDIT_WORKERS,    default=4"`
	StorageDriver   string        `env:"STORAGE_DRIVER,   default=mongo"`

	// TrustedProxies lists the CIDRs allowed to set X-Forwarded-For. Empty
	// means the client IP is always the TCP peer.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	Auth      AuthConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Seed      SeedConfig
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET, required"`
	TokenTTL         time.Duration `env:"TOKEN_TTL,          default=168h"`
	BcryptCost       int           `env:"BCRYPT_COST,        default=12"`
	AllowAdminSignup bool          `env:"ALLOW_ADMIN_SIGNUP, default=false"`
}

type RateLimitConfig struct {
	Window  time.Duration `env:"RATE_LIMIT_WINDOW,   default=15m"`
	Max     int           `env:"RATE_LIMIT_MAX,      default=100"`
	AuthMax int           `env:"AUTH_RATE_LIMIT_MAX, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=blue_carbon_registry"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// SeedConfig is only read by cmd/seed.
type SeedConfig struct {
	AdminEmail     string `env:"SEED_ADMIN_EMAIL,      default=admin@bluecarbon.local"`
	AdminPassword  string `env:"SEED_ADMIN_PASSWORD"`
	AdminFirstName string `env:"SEED_ADMIN_FIRST_NAME, default=Registry"`
	AdminLastName  string `env:"SEED_ADMIN_LAST_NAME,  default=Admin"`
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// TrustedProxyNets returns TrustedProxies parsed. process has already
// rejected malformed entries.
func (c *Config) TrustedProxyNets() []*net.IPNet {
	nets, _ := parseCIDRs(c.TrustedProxies)
	return nets
}

func parseCIDRs(raw []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(raw))
	for _, s := range raw {
		_, n, err := net.ParseCIDR(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// Load reads a .env file when one exists, then resolves configuration from
// environment variables using go-envconfig. Variables already set in the
// environment win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return process(ctx, envconfig.OsLookuper())
}

func process(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if cfg.StorageDriver != "mongo" && cfg.StorageDriver != "memory" {
		return nil, fmt.Errorf("STORAGE_DRIVER must be mongo or memory, got %q", cfg.StorageDriver)
	}
	if len(cfg.Auth.JWTSecret) < 16 && !cfg.IsDevelopment() {
		return nil, errors.New("JWT_SECRET must be at least 16 characters outside development")
	}
	if _, err := parseCIDRs(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	return &cfg, nil
}
