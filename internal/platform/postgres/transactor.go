package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/careplan-api/internal/store"
)

// DB bundles the PostgreSQL stores behind one connection pool. It implements
// store.Transactor and store.Pinger.
type DB struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDB wraps an open connection pool.
func NewDB(db *sql.DB, logger *slog.Logger) *DB {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{db: db, logger: logger}
}

var (
	_ store.Transactor = (*DB)(nil)
	_ store.Pinger     = (*DB)(nil)
)

// Stores returns stores that run each statement directly on the pool.
func (d *DB) Stores() store.Stores {
	return newStores(d.db, d.logger)
}

// WithinTx runs fn against stores bound to a single transaction.
func (d *DB) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Stores) error) error {
	return store.RunInTransaction(ctx, d.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, newStores(tx, d.logger))
	})
}

// Ping verifies the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func newStores(db store.DBTX, logger *slog.Logger) store.Stores {
	return store.Stores{
		Providers: NewPostgresProviderStore(db, logger),
		Patients:  NewPostgresPatientStore(db, logger),
		Orders:    NewPostgresOrderStore(db, logger),
		CarePlans: NewPostgresCarePlanStore(db, logger),
	}
}
