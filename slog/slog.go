// Package slog provides logging decorators for blockimport services.
// Each decorator logs the operation with its attributes, duration and error.
package slog
