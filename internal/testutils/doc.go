// Package testutils provides helpers shared by package tests: an in-memory
// slog handler for asserting on log output, a migrated in-memory SQLite
// database, and builders for users and tasks.
package testutils
