// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Two implementations exist: platform/postgres (database/sql over pgx) and
// platform/gormstore (GORM over SQLite). Both honour the error taxonomy in
// errors.go and the transaction contract of Transactor.
package store
