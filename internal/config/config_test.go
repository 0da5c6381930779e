package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.Tracking.PollIntervalSecs)
	assert.Equal(t, 120, cfg.Tracking.IdleThresholdSecs)
	assert.Equal(t, 1, cfg.Tracking.MinDurationSecs)
	assert.Equal(t, 20, cfg.Tracking.SuspendGapSecs)
	assert.Empty(t, cfg.Tracking.DeviceID)
	assert.Equal(t, 90, cfg.Retention.Days)
	assert.Equal(t, 24, cfg.Retention.PruneIntervalHours)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8932, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Storage.Path)
}

func TestDurationAccessors(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, 2*time.Minute, cfg.IdleThreshold())
	assert.Equal(t, time.Second, cfg.MinDuration())
	assert.Equal(t, 20*time.Second, cfg.SuspendGap())
}

func TestLoadValidYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
tracking:
  poll_interval_secs: 10
  device_id: laptop
retention:
  days: 30
server:
  port: 9000
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(yamlContent), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, 10, cfg.Tracking.PollIntervalSecs)
	assert.Equal(t, "laptop", cfg.Tracking.DeviceID)
	assert.Equal(t, 30, cfg.Retention.Days)
	assert.Equal(t, 9000, cfg.Server.Port)

	// Untouched values keep defaults
	assert.Equal(t, 120, cfg.Tracking.IdleThresholdSecs)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 24, cfg.Retention.PruneIntervalHours)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Tracking, cfg.Tracking)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("tracking: [not a map"), 0o644))

	_, err := Load(cfgPath)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server:\n  port: 9000\n"), 0o644))

	t.Setenv("LUMEN_PORT", "9500")
	t.Setenv("LUMEN_DEVICE_ID", "env-device")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 9500, cfg.Server.Port)
	assert.Equal(t, "env-device", cfg.Tracking.DeviceID)
}

func TestLoadOrCreateAt_WritesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "nested", "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 8932, cfg.Server.Port)

	// File was materialized and loads back identically.
	_, err = os.Stat(cfgPath)
	require.NoError(t, err)
	again, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Tracking, again.Tracking)
}

func TestResolveDeviceID_Configured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracking.DeviceID = "workstation"

	id, err := cfg.ResolveDeviceID()
	require.NoError(t, err)
	assert.Equal(t, "workstation", id)
}

func TestResolveDeviceID_GeneratedAndPersisted(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Storage.Path = filepath.Join(dir, "lumen.db")

	id, err := cfg.ResolveDeviceID()
	require.NoError(t, err)
	assert.Len(t, id, 12)

	// Second call reads the same id back from the device_id file.
	again, err := cfg.ResolveDeviceID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestDefaultPrivacyRulesAreValid(t *testing.T) {
	rules := DefaultPrivacyRules()
	require.NotEmpty(t, rules)
	for _, r := range rules {
		assert.Contains(t, []string{"ignore", "redact"}, r.RuleType)
		assert.True(t, r.WMClassPattern != "" || r.TitlePattern != "")
	}
}
