// Package memory provides an in-process implementation of the store
// interfaces. It enforces the same unique keys and conditional status updates
// as the Postgres stores and backs the memory database driver and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/store"
)

type memoryState struct {
	providers map[uuid.UUID]domain.Provider
	patients  map[uuid.UUID]domain.Patient
	orders    map[uuid.UUID]domain.Order
	carePlans map[uuid.UUID]domain.CarePlan
}

func newMemoryState() memoryState {
	return memoryState{
		providers: make(map[uuid.UUID]domain.Provider),
		patients:  make(map[uuid.UUID]domain.Patient),
		orders:    make(map[uuid.UUID]domain.Order),
		carePlans: make(map[uuid.UUID]domain.CarePlan),
	}
}

func (s memoryState) clone() memoryState {
	c := newMemoryState()
	for k, v := range s.providers {
		c.providers[k] = v
	}
	for k, v := range s.patients {
		c.patients[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.carePlans {
		c.carePlans[k] = cloneCarePlan(v)
	}
	return c
}

func cloneCarePlan(cp domain.CarePlan) domain.CarePlan {
	if cp.OrderID != nil {
		id := *cp.OrderID
		cp.OrderID = &id
	}
	return cp
}

// DB is the shared in-memory state behind all memory stores.
type DB struct {
	mu    sync.RWMutex
	state memoryState
}

// NewDB creates an empty in-memory database.
func NewDB() *DB {
	return &DB{state: newMemoryState()}
}

// Stores returns stores bound to db.
func (db *DB) Stores() store.Stores {
	return store.Stores{
		Providers: &ProviderStore{db: db},
		Patients:  &PatientStore{db: db},
		Orders:    &OrderStore{db: db},
		CarePlans: &CarePlanStore{db: db},
	}
}

// WithinTx runs fn with stores bound to a private copy of the state and
// swaps the copy in when fn succeeds. db is write-locked for the whole call,
// so fn must only use the stores it is given.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Stores) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx := &DB{state: db.state.clone()}
	if err := fn(ctx, tx.Stores()); err != nil {
		return err
	}
	db.state = tx.state
	return nil
}

// Ping always succeeds.
func (db *DB) Ping(context.Context) error {
	return nil
}

var (
	_ store.Transactor = (*DB)(nil)
	_ store.Pinger     = (*DB)(nil)
)
