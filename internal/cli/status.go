package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dwelltrack/lumen/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version       string         `json:"version"`
	TotalEvents   int64          `json:"total_events"`
	OldestEvent   string         `json:"oldest_event,omitempty"`
	NewestEvent   string         `json:"newest_event,omitempty"`
	Devices       []string       `json:"devices"`
	TopApps       []appCountJSON `json:"top_apps"`
	DaemonRunning bool           `json:"daemon_running"`
}

type appCountJSON struct {
	WMClass string `json:"wm_class"`
	Count   int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	if c.store != nil {
		return c.executeWithStore(c.store)
	}
	store, db, err := openStore(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()
	return c.executeWithStore(store)
}

// executeWithStore runs status against a provided store (for testing).
func (c *StatusCommand) executeWithStore(store *storage.Store) error {
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	daemonRunning := checkDaemon(c.globals)

	if c.globals != nil && c.globals.JSON {
		return printStatusJSON(c.version, stats, daemonRunning)
	}
	return printStatusHuman(c.version, stats, daemonRunning)
}

func printStatusHuman(version string, stats *storage.Stats, daemonRunning bool) error {
	fmt.Println("lumen status")
	fmt.Println("============")
	fmt.Printf("Version:   %s\n", version)
	fmt.Printf("Events:    %d\n", stats.TotalEvents)

	if stats.TotalEvents > 0 {
		fmt.Printf("Oldest:    %s\n", stats.OldestEvent.Local().Format("2006-01-02"))
		fmt.Printf("Newest:    %s\n", stats.NewestEvent.Local().Format("2006-01-02"))
	}
	if len(stats.Devices) > 0 {
		fmt.Printf("Devices:   %d\n", len(stats.Devices))
		for _, d := range stats.Devices {
			fmt.Printf("  %s\n", d)
		}
	}
	if len(stats.TopApps) > 0 {
		fmt.Println()
		fmt.Println("Top apps:")
		for _, a := range stats.TopApps {
			fmt.Printf("  %-24s %d\n", a.WMClass, a.Count)
		}
	}

	fmt.Println()
	if daemonRunning {
		fmt.Println("Daemon:    running")
	} else {
		fmt.Println("Daemon:    not running")
	}
	return nil
}

func printStatusJSON(version string, stats *storage.Stats, daemonRunning bool) error {
	out := statusJSON{
		Version:       version,
		TotalEvents:   stats.TotalEvents,
		Devices:       stats.Devices,
		TopApps:       make([]appCountJSON, len(stats.TopApps)),
		DaemonRunning: daemonRunning,
	}
	if out.Devices == nil {
		out.Devices = []string{}
	}
	if stats.TotalEvents > 0 {
		out.OldestEvent = stats.OldestEvent.UTC().Format(time.RFC3339)
		out.NewestEvent = stats.NewestEvent.UTC().Format(time.RFC3339)
	}
	for i, a := range stats.TopApps {
		out.TopApps[i] = appCountJSON{WMClass: a.WMClass, Count: a.Count}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// checkDaemon probes the local API's status endpoint. Returns true if
// the daemon responds within 1 second.
func checkDaemon(globals *GlobalFlags) bool {
	cfg, err := loadConfig(globals)
	if err != nil {
		return false
	}
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s:%d/api/status", cfg.Server.Host, cfg.Server.Port))
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
