package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Addr                      string        `env:"APP_ADDR, default=:8080"`
	DatabaseURL               string        `env:"DATABASE_URL"`
	JWTSecret                 string        `env:"JWT_SECRET, default=dev-only-secret"`
	FrontendDir               string        `env:"FRONTEND_DIR, default=frontend/dist"`
	Environment               string        `env:"APP_ENV, default=development"`
	Timezone                  string        `env:"APP_TIMEZONE, default=America/Sao_Paulo"`
	DefaultTargetShiftMinutes int           `env:"DEFAULT_TARGET_SHIFT_MINUTES, default=480"`
	TokenTTL                  time.Duration `env:"TOKEN_TTL, default=12h"`
	SeedAdminName             string        `env:"SEED_ADMIN_NAME, default=Administrador"`
	SeedAdminCPF              string        `env:"SEED_ADMIN_CPF"`
	SeedAdminPassword         string        `env:"SEED_ADMIN_PASSWORD"`
	RunMigrations             bool          `env:"RUN_MIGRATIONS, default=true"`
	RunSeed                   bool          `env:"RUN_SEED, default=true"`
	MigrationsDir             string        `env:"MIGRATIONS_DIR, default=migrations"`
	MaxBodyBytes              int64         `env:"MAX_BODY_BYTES, default=1048576"`
	IncompleteScanInterval    time.Duration `env:"INCOMPLETE_SCAN_INTERVAL, default=24h"`
	MetricsEnabled            bool          `env:"METRICS_ENABLED, default=true"`
	RateLimitPerWindow        int           `env:"RATE_LIMIT_PER_WINDOW, default=120"`
	LoginRateLimit            int           `env:"LOGIN_RATE_LIMIT, default=10"`
	RateLimitWindow           time.Duration `env:"RATE_LIMIT_WINDOW, default=1m"`
}

// devJWTSecret keeps local runs working without configuration; Validate
// refuses it in production.
const devJWTSecret = "dev-only-secret"

func Load(ctx context.Context) (Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Location resolves Timezone, falling back to a fixed UTC-3 zone when the
// tz database is not available in the container.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("timezone not found, using fixed UTC-3", "timezone", c.Timezone, "err", err)
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if secret := strings.TrimSpace(c.JWTSecret); secret == "" || secret == devJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if c.DefaultTargetShiftMinutes <= 0 || c.DefaultTargetShiftMinutes > 24*60 {
		return fmt.Errorf("DEFAULT_TARGET_SHIFT_MINUTES must be between 1 and 1440")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitWindow <= 0 && (c.RateLimitPerWindow > 0 || c.LoginRateLimit > 0) {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limits are enabled")
	}
	return nil
}
