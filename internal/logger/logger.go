// Package logger is a thin wrapper around zerolog used across lumen.
// Application code passes *Logger by pointer; request handlers obtain a
// request-scoped logger via FromRequest or FromContext.
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger embeds zerolog.Logger so the full zerolog API is available
// directly on *Logger.
type Logger struct {
	zerolog.Logger
}

// New constructs a JSON logger writing to w, tagged with a role field
// (e.g. "tracker", "server") for filtering combined output.
func New(w io.Writer, role, level string) *Logger {
	l := zerolog.New(w).Level(parseLevel(level)).With().
		Str("role", role).
		Timestamp().
		Logger()
	return &Logger{l}
}

// NewStdout is a convenience constructor for the common stdout case.
func NewStdout(role, level string) *Logger {
	return New(os.Stdout, role, level)
}

// Nop returns a logger that discards everything. Intended for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// WithContext attaches the logger to ctx so FromContext can recover it.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx by WithContext. zerolog
// falls back to its global logger, so the result is never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// FromRequest returns the request-scoped logger attached by the HTTP
// logging middleware.
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
