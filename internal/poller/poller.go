// Package poller defines the platform poller boundary. Pollers are
// external collaborators: they observe the foreground window and idle
// state, and the tracking loop turns their observations into samples.
// Only a minimal X11 command-line implementation ships here; richer
// platform integrations submit samples over the HTTP ingest endpoint
// instead.
package poller

import (
	"context"
	"time"
)

// Window describes the current foreground window.
type Window struct {
	WMClass string
	Title   string
}

// Source supplies the raw observations for one device.
type Source interface {
	// ActiveWindow returns the current foreground window.
	ActiveWindow(ctx context.Context) (Window, error)
	// IdleTime returns how long the user has been idle.
	IdleTime(ctx context.Context) (time.Duration, error)
}
