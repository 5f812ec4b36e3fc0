// Package database provides connection setup for MariaDB and Redis, plus
// the schema migrations. Both connections are created once at startup and
// shared across the application via dependency injection.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// MariaDB driver, registered for database/sql.
	_ "github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/inlineeditor/internal/config"
)

// Connection retry policy. MariaDB may still be starting when the app
// container launches.
const (
	maxPingAttempts = 10
	maxPingBackoff  = 30 * time.Second
	pingTimeout     = 5 * time.Second
)

// NewMariaDB opens a MariaDB pool with the configured limits and waits
// until it answers a ping, backing off exponentially between attempts.
// Cancelling ctx aborts the wait.
func NewMariaDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening mariadb connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := waitForPing(ctx, db.PingContext, time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging mariadb: %w", err)
	}
	return db, nil
}

// waitForPing calls ping until it succeeds, maxPingAttempts is reached or
// ctx is done.
func waitForPing(ctx context.Context, ping func(context.Context) error, backoff time.Duration) error {
	var pingErr error
	for attempt := 1; attempt <= maxPingAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		pingErr = ping(attemptCtx)
		cancel()
		if pingErr == nil {
			return nil
		}
		if attempt == maxPingAttempts {
			break
		}

		slog.Warn("mariadb not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxPingAttempts),
			slog.Duration("backoff", backoff),
			slog.Any("error", pingErr),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxPingBackoff)
	}
	return fmt.Errorf("giving up after %d attempts: %w", maxPingAttempts, pingErr)
}
