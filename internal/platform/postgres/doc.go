// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles query execution, error mapping and data mapping between domain
// entities and database records. Connections are opened by the caller through
// database/sql with the pgx driver; the schema lives in the embedded goose
// migrations under migrations/.
package postgres
