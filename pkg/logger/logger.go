// Package logger provides a single construction point for the structured
// loggers used throughout the Ignite key/value store. Every subsystem
// receives a *zap.SugaredLogger tagged with the service name that created
// it, so log lines can be filtered by component without extra plumbing.
package logger

import (
	"go.uber.org/zap"
)

// New builds a production zap logger scoped to service and returns its
// sugared form, matching the calling convention every internal subsystem
// constructor expects (Config.Logger).
//
// If the production logger cannot be built (extremely rare, it only fails
// on a broken encoder/sink configuration, none of which this package sets),
// New falls back to zap's no-op logger rather than panicking at startup.
func New(service string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return base.With(zap.String("service", service)).Sugar()
}

// NewDevelopment builds a human-readable, colorized logger suitable for the
// cmd/server, cmd/client, and cmd/press collaborators when run from a
// terminal.
func NewDevelopment(service string) *zap.SugaredLogger {
	base, err := zap.NewDevelopment()
	if err != nil {
		base = zap.NewNop()
	}
	return base.With(zap.String("service", service)).Sugar()
}
