package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/phrazzld/careplan-api/internal/config"
	"github.com/phrazzld/careplan-api/internal/platform/memory"
	"github.com/phrazzld/careplan-api/internal/platform/postgres"
	"github.com/phrazzld/careplan-api/internal/store"
)

const databasePingTimeout = 5 * time.Second

// storageBackend is what the application needs from a storage driver.
type storageBackend interface {
	store.Transactor
	store.Pinger
	Stores() store.Stores
}

// storage is an opened storage driver. sqlDB is nil for the memory driver.
type storage struct {
	backend storageBackend
	sqlDB   *sql.DB
}

// Close releases the connection pool, if any.
func (s *storage) Close() error {
	if s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// openStorage opens the configured storage driver. For postgres it applies
// pending migrations first when migrate_on_start is set.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("using in-memory storage, data is lost on exit")
		return &storage{backend: memory.NewDB()}, nil
	case "postgres":
		db, err := setupAppDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Database.MigrateOnStart {
			if err := runMigrations(ctx, db, "up", logger); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("failed to apply migrations: %w", err)
			}
		}
		return &storage{backend: postgres.NewDB(db, logger), sqlDB: db}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// setupAppDatabase establishes a connection to the database and configures connection pools.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, databasePingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns)
	return db, nil
}
