package store

import "context"

// Stores groups the stores that take part in one unit of work.
type Stores struct {
	Providers ProviderStore
	Patients  PatientStore
	Orders    OrderStore
	CarePlans CarePlanStore
}

// Transactor runs a function against stores bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
