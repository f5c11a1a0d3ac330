// Package repository persists documents, extraction runs, and correction
// audit rows. It speaks plain database/sql so the same code runs on an
// embedded SQLite file and on Postgres.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/documind/documind/internal/common"
)

// driverName maps the configured driver onto the database/sql driver id.
func driverName(driver string) (string, error) {
	switch driver {
	case "sqlite":
		return "sqlite", nil
	case "pgx", "postgres":
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", driver)
	}
}

// Open connects, applies pool settings, pings, and optionally migrates.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	name, err := driverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	logger.Info("db.open", "driver", name)

	db, err := sql.Open(name, cfg.DSN)
	if err != nil {
		logger.Error("db.open_failed", "driver", name, "error", err)
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("db.ping_failed", "error", err)
		_ = db.Close()
		return nil, common.NewAppError("DB_UNREACHABLE", "database ping failed", err)
	}

	if cfg.MigrateOnStartup {
		if err := Migrate(ctx, db); err != nil {
			logger.Error("db.migrate_failed", "error", err)
			_ = db.Close()
			return nil, err
		}
		logger.Info("db.migrated")
	}

	logger.Info("db.ready")
	return db, nil
}

// Close closes the database connection gracefully.
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.Close(); err != nil {
		logger.Error("db.close_failed", "error", err)
		return
	}
	logger.Info("db.closed")
}

// HealthCheck pings the database, bounded by timeout when positive.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Error("db.health_failed", "error", err)
		return err
	}
	logger.Debug("db.health_ok")
	return nil
}
