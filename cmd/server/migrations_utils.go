package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf forwards goose progress messages at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at error level. Unlike the standard Fatalf it does not exit;
// the error is returned to the command.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// getExecutionMode returns a string describing the execution environment
func getExecutionMode() string {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return "ci"
	}
	return "local"
}

// maskDatabaseURL masks the password in a database URL for safe logging.
// Paths without a scheme, such as SQLite files, are returned unchanged.
func maskDatabaseURL(dbURL string) string {
	if !strings.Contains(dbURL, "://") {
		return dbURL
	}
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if _, hasPassword := parsedURL.User.Password(); hasPassword {
		parsedURL.User = url.UserPassword(parsedURL.User.Username(), "xxxxx")
	}
	return parsedURL.String()
}

// extractHostFromURL extracts the hostname from a database URL for logging
func extractHostFromURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "unknown"
	}
	return parsedURL.Hostname()
}
