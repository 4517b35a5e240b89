// Package store defines the persistence contracts of the care plan service.
// Stores look records up by their unique keys and create them against storage
// level unique constraints, reporting ErrDuplicate when a concurrent writer
// won, so callers can re-read and re-apply their rules.
package store
