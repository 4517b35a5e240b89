package postgres

import "embed"

// MigrationsDir is the directory inside Migrations holding the goose files.
const MigrationsDir = "migrations"

// Migrations holds the SQL schema migrations applied by goose.
//
//go:embed migrations/*.sql
var Migrations embed.FS
