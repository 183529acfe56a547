package buildsite

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/eringen/buildsite/content"
)

// SiteConfig holds all configuration for the API server and the bundle host.
type SiteConfig struct {
	Name        string // Site name (default "Buildsite")
	URL         string // Public URL of the site (default "http://localhost:8080")
	Description string // Feed description

	Addr         string // API listen address (default ":3001")
	DatabasePath string // SQLite path (default "data/buildsite.db")
	UploadsDir   string // Resume and image uploads (default "data/uploads")

	AdminPassword string        // Required: admin login password
	SessionSecret string        // Required: cookie session secret
	JWTSecret     string        // Bearer token signing key (defaults to SessionSecret)
	TokenTTL      time.Duration // Bearer token lifetime (default 12h)
	CookieSecure  bool          // Set true for HTTPS
	AllowOrigins  []string      // CORS origins (default: URL)

	PostCacheTTL time.Duration // Published post cache TTL (default 5min)
	LikeWindow   time.Duration // One like per IP per post within this window (default 24h)

	Port      int    // Bundle host port (default 8080)
	BundleDir string // Built client bundle (default "dist")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Buildsite"
	}
	if c.URL == "" {
		c.URL = "http://localhost:8080"
	}
	if c.Addr == "" {
		c.Addr = ":3001"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/buildsite.db"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "data/uploads"
	}
	if len(c.AllowOrigins) == 0 {
		c.AllowOrigins = []string{strings.TrimRight(c.URL, "/")}
	}
	if c.JWTSecret == "" {
		c.JWTSecret = c.SessionSecret
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 12 * time.Hour
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.LikeWindow == 0 {
		c.LikeWindow = 24 * time.Hour
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.BundleDir == "" {
		c.BundleDir = "dist"
	}
}

// LoadConfig reads a .env file if present and builds a SiteConfig from the
// environment. Unset values keep their defaults.
func LoadConfig(files ...string) SiteConfig {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		log.Printf("buildsite: load env file: %v", err)
	}
	cfg := SiteConfig{
		Name:          os.Getenv("SITE_NAME"),
		URL:           os.Getenv("SITE_URL"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Addr:          os.Getenv("BUILDSITE_ADDR"),
		DatabasePath:  os.Getenv("BUILDSITE_DB"),
		UploadsDir:    os.Getenv("BUILDSITE_UPLOADS"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "true",
		AllowOrigins:  content.SplitTags(os.Getenv("CORS_ORIGINS")),
		BundleDir:     os.Getenv("BUNDLE_DIR"),
	}
	if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.Port = p
	}
	cfg.setDefaults()
	return cfg
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStore uses an already opened store instead of opening DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
