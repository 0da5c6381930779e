package config

import (
	"os"
	"path/filepath"
)

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path: defaultDBPath(),
		},
		Tracking: TrackingConfig{
			PollIntervalSecs:  5,
			IdleThresholdSecs: 120,
			MinDurationSecs:   1,
			SuspendGapSecs:    20,
		},
		Retention: RetentionConfig{
			Days:               90,
			PruneIntervalHours: 24,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8932,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lumen.db"
	}
	return filepath.Join(home, ".local", "share", "lumen", "lumen.db")
}
