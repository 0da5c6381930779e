package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ResolveDeviceID returns the configured device id, falling back to a
// persistent id stored in a device_id file next to the database. The
// file is created with a fresh short uuid on first run, so one machine
// keeps a stable identity across restarts.
func (c *Config) ResolveDeviceID() (string, error) {
	if c.Tracking.DeviceID != "" {
		return c.Tracking.DeviceID, nil
	}

	idFile := filepath.Join(filepath.Dir(c.Storage.Path), "device_id")
	if data, err := os.ReadFile(idFile); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if err := os.MkdirAll(filepath.Dir(idFile), 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(idFile, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("persisting device id: %w", err)
	}
	return id, nil
}
