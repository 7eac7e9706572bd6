// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// Sessions are stored as JSONB documents keyed by session ID, accessed through
// database/sql with the pgx stdlib driver.
package postgres
