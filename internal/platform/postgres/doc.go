// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver. It also embeds the goose schema migrations.
//
// Every store accepts a store.DBTX so the same code runs against the pool or
// inside a transaction opened by Transactor.
package postgres
