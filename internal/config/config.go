// Package config loads lumen configuration from defaults, an optional
// YAML file, and environment variable overrides, merged in priority
// order (env > file > defaults).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the standard config file location.
const DefaultConfigPath = "~/.config/lumen/config.yaml"

// Config holds all lumen configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Tracking  TrackingConfig  `yaml:"tracking"`
	Retention RetentionConfig `yaml:"retention"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type StorageConfig struct {
	Path string `yaml:"path" env:"LUMEN_DB_PATH"`
}

type TrackingConfig struct {
	DeviceID          string `yaml:"device_id" env:"LUMEN_DEVICE_ID"`
	PollIntervalSecs  int    `yaml:"poll_interval_secs" env:"LUMEN_POLL_INTERVAL_SECS"`
	IdleThresholdSecs int    `yaml:"idle_threshold_secs" env:"LUMEN_IDLE_THRESHOLD_SECS"`
	MinDurationSecs   int    `yaml:"min_duration_secs" env:"LUMEN_MIN_DURATION_SECS"`
	SuspendGapSecs    int    `yaml:"suspend_gap_secs" env:"LUMEN_SUSPEND_GAP_SECS"`
}

type RetentionConfig struct {
	Days               int `yaml:"days" env:"LUMEN_RETENTION_DAYS"`
	PruneIntervalHours int `yaml:"prune_interval_hours"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"LUMEN_HOST"`
	Port int    `yaml:"port" env:"LUMEN_PORT"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"LUMEN_LOG_LEVEL"`
	File  string `yaml:"file"`
}

// PollInterval returns the tracking poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Tracking.PollIntervalSecs) * time.Second
}

// IdleThreshold returns the idle detection threshold as a duration.
func (c *Config) IdleThreshold() time.Duration {
	return time.Duration(c.Tracking.IdleThresholdSecs) * time.Second
}

// MinDuration returns the segment duration floor.
func (c *Config) MinDuration() time.Duration {
	return time.Duration(c.Tracking.MinDurationSecs) * time.Second
}

// SuspendGap returns the suspend-detection gap threshold.
func (c *Config) SuspendGap() time.Duration {
	return time.Duration(c.Tracking.SuspendGapSecs) * time.Second
}

// Load reads the YAML file at path (when it exists) and layers env
// overrides and defaults around it.
func Load(path string) (*Config, error) {
	layers := []*Config{}

	envCfg, err := parseEnv()
	if err != nil {
		return nil, err
	}
	layers = append(layers, envCfg)

	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return nil, err
		}
		if data, err := os.ReadFile(expanded); err == nil {
			fileCfg := &Config{}
			if err := yaml.Unmarshal(data, fileCfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
			layers = append(layers, fileCfg)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	layers = append(layers, DefaultConfig())

	// Earlier layers win: mergo only fills fields still at their zero
	// value.
	cfg := &Config{}
	for _, layer := range layers {
		if err := mergo.Merge(cfg, layer); err != nil {
			return nil, fmt.Errorf("merging config layers: %w", err)
		}
	}

	return cfg, nil
}

// LoadOrCreate loads the config from the default path, writing a
// default config file first when none exists.
func LoadOrCreate() (*Config, error) {
	return LoadOrCreateAt(DefaultConfigPath)
}

// LoadOrCreateAt is LoadOrCreate for an explicit path.
func LoadOrCreateAt(path string) (*Config, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(expanded); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}
		data, err := yaml.Marshal(DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}
		if err := os.WriteFile(expanded, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
	}

	return Load(expanded)
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
