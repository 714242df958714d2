package pubadmin

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// SiteConfig holds all configuration for a pubadmin deployment.
type SiteConfig struct {
	Name string `env:"SITE_NAME"` // Dashboard title (default "Admin")
	URL  string `env:"SITE_URL"`  // Public URL, used for uploaded image links (default "http://localhost:3000")

	APIBaseURL string        `env:"API_BASE_URL"` // Required: content backend base URL
	APITimeout time.Duration `env:"API_TIMEOUT"`  // Backend call timeout (default 30s)

	Addr         string `env:"ADDR"`          // Listen address (default ":3000")
	DatabasePath string `env:"DATABASE_PATH"` // SQLite path (default "data/admin.db")
	StaticDir    string `env:"STATIC_DIR"`    // Uploads live under StaticDir/uploads (default "public")

	SessionSecret string `env:"ADMIN_SESSION_SECRET"` // Required: session cookie secret
	CookieSecure  bool   `env:"COOKIE_SECURE"`        // Set true for HTTPS
	RedisURL      string `env:"REDIS_URL"`            // When set, sessions are kept in Redis

	PageSize int           `env:"PAGE_SIZE"` // Rows per list page (default 10)
	StateTTL time.Duration `env:"STATE_TTL"` // Idle per-session state is dropped after this (default 30m)
	LogLevel string        `env:"LOG_LEVEL"` // debug, info, warn or error (default "info")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Admin"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.APITimeout == 0 {
		c.APITimeout = 30 * time.Second
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/admin.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.PageSize <= 0 {
		c.PageSize = 10
	}
	if c.StateTTL == 0 {
		c.StateTTL = 30 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c SiteConfig) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("pubadmin: API_BASE_URL is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("pubadmin: ADMIN_SESSION_SECRET is required")
	}
	return nil
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig(files ...string) (SiteConfig, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found, using system environment")
	}
	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("pubadmin: parse env: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir overrides the directory for uploaded and user-owned assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithStore uses an already opened Store instead of opening DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
