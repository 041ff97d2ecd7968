// Package mocks provides testify/mock implementations of the store, event and
// auth interfaces for unit tests that must not touch a database.
package mocks
