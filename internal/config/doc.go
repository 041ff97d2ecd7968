// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// A Config is loaded once at process start and handed to every component that
// needs it; nothing in the application reads configuration from global state.
package config
