// Package config loads the server configuration from environment
// variables. No other package reads the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config is the complete server configuration.
type Config struct {
	Env      string // "development" or "production"
	Port     int
	BaseURL  string // public URL; https is required in production
	LogLevel string // debug, info, warn or error

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Limits   LimitsConfig

	MigrationsPath string

	// TrustedProxies lists the CIDRs whose X-Forwarded-For headers are
	// believed when resolving client IPs.
	TrustedProxies []string
}

// DatabaseConfig holds the MariaDB settings. DATABASE_URL, when set, wins
// over the individual DB_* variables.
type DatabaseConfig struct {
	Host     string // host or host:port; port 3306 is assumed
	User     string
	Password string
	Name     string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	url string
}

// DSN returns the go-sql-driver/mysql data source name.
func (d DatabaseConfig) DSN() string {
	if d.url != "" {
		return d.url
	}
	dsn := mysql.NewConfig()
	dsn.Net = "tcp"
	dsn.Addr = withDefaultPort(d.Host, "3306")
	dsn.User, dsn.Passwd, dsn.DBName = d.User, d.Password, d.Name
	dsn.ParseTime = true
	return dsn.FormatDSN()
}

func withDefaultPort(host, port string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, port)
}

// RedisConfig holds the Redis settings.
type RedisConfig struct {
	URL string // redis://[user:pass@]host:port[/db]
}

// AuthConfig holds the session settings.
type AuthConfig struct {
	// SessionTTL is how long a session survives without requests.
	SessionTTL time.Duration
}

// Limit allows Requests per client IP in each Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

func (l Limit) String() string { return fmt.Sprintf("%d/%s", l.Requests, l.Window) }

// LimitsConfig holds the per-IP rate limits. Each is read as "<n>/<window>",
// e.g. LOGIN_RATE_LIMIT=10/1m.
type LimitsConfig struct {
	Login    Limit
	Register Limit

	// Editor covers every inline editor request, dialog loads and submits.
	Editor Limit
}

// Load reads the configuration. Malformed values are reported together
// rather than replaced by defaults.
func Load() (*Config, error) {
	var env reader
	cfg := &Config{
		Env:      env.str("ENV", "development"),
		Port:     env.integer("PORT", 8080),
		BaseURL:  env.str("BASE_URL", "http://localhost:8080"),
		LogLevel: env.str("LOG_LEVEL", "debug"),

		Database: DatabaseConfig{
			Host:            env.str("DB_HOST", "localhost:3306"),
			User:            env.str("DB_USER", "editor"),
			Password:        env.str("DB_PASSWORD", "editor"),
			Name:            env.str("DB_NAME", "inlineeditor"),
			MaxOpenConns:    env.integer("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    env.integer("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: env.duration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			url:             env.str("DATABASE_URL", ""),
		},
		Redis: RedisConfig{URL: env.str("REDIS_URL", "redis://localhost:6379")},
		Auth:  AuthConfig{SessionTTL: env.duration("SESSION_TTL", 720*time.Hour)},
		Limits: LimitsConfig{
			Login:    env.limit("LOGIN_RATE_LIMIT", Limit{10, time.Minute}),
			Register: env.limit("REGISTER_RATE_LIMIT", Limit{5, time.Minute}),
			Editor:   env.limit("EDITOR_RATE_LIMIT", Limit{120, time.Minute}),
		},

		MigrationsPath: env.str("MIGRATIONS_PATH", "db/migrations"),
		TrustedProxies: env.list("TRUSTED_PROXIES"),
	}

	if cfg.Auth.SessionTTL <= 0 {
		env.fail("SESSION_TTL", "must be positive")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		env.fail("PORT", "must be between 1 and 65535")
	}
	// Session cookies are marked Secure from BASE_URL, and the development
	// password is public.
	if cfg.IsProduction() {
		if cfg.Database.url == "" && cfg.Database.Password == "editor" {
			env.fail("DB_PASSWORD", "must be set in production")
		}
		if !strings.HasPrefix(cfg.BaseURL, "https://") {
			env.fail("BASE_URL", fmt.Sprintf("must use https in production, got %q", cfg.BaseURL))
		}
	}

	if err := env.err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether ENV names production ("production", "prod",
// any case).
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "production", "prod":
		return true
	}
	return false
}

// IsDevelopment reports whether ENV names development.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.Env) {
	case "development", "dev":
		return true
	}
	return false
}

// errInvalid wraps every configuration problem Load reports.
var errInvalid = errors.New("invalid configuration")
