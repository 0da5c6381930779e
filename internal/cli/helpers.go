package cli

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dwelltrack/lumen/internal/aggregate"
	"github.com/dwelltrack/lumen/internal/config"
	"github.com/dwelltrack/lumen/internal/storage"
)

// loadConfig loads the effective config, honoring the global --config
// flag.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		return config.Load(globals.Config)
	}
	return config.Load(config.DefaultConfigPath)
}

// openStore opens the configured database, running migrations, and
// returns a ready store with the underlying *sql.DB for closing.
func openStore(globals *GlobalFlags) (*storage.Store, *sql.DB, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, nil, err
	}
	return storage.Open(cfg.Storage.Path)
}

// parseDuration parses a human-friendly duration string like "30d", "24h", "2w".
func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]

	n, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	switch suffix {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	default:
		return 0, fmt.Errorf("invalid duration %q (use d, h, w, or m suffix)", s)
	}
}

// reportRange resolves a --date flag (or today) into a single-day
// range with the given device filter.
func reportRange(dateStr string, devices []string) (storage.RangeQuery, error) {
	day := time.Now()
	if dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			return storage.RangeQuery{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", dateStr)
		}
		day = parsed
	}
	start, end := aggregate.DayRange(day)
	return storage.RangeQuery{Devices: devices, Start: start, End: end}, nil
}

// formatSecs renders a seconds total like "2h 5m" or "45s".
func formatSecs(secs float64) string {
	d := time.Duration(secs * float64(time.Second))
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// formatDurationHuman formats a duration like "30 days" or "6 hours".
func formatDurationHuman(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(d.Hours())
	if hours > 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}
