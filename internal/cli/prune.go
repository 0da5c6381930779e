package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dwelltrack/lumen/internal/storage"
)

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
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

func (c *PruneCommand) executeWithStore(store *storage.Store) error {
	ctx := context.Background()

	retention, err := c.retention()
	if err != nil {
		return err
	}
	if retention <= 0 {
		fmt.Println("Retention is disabled; nothing to prune.")
		return nil
	}
	cutoff := time.Now().Add(-retention)

	if c.DryRun {
		events, err := store.QueryRange(ctx, storage.RangeQuery{
			Start: time.Unix(0, 0),
			End:   cutoff,
		})
		if err != nil {
			return err
		}
		count := 0
		for _, e := range events {
			if e.EndTime.Before(cutoff) {
				count++
			}
		}
		fmt.Printf("Would prune %d events older than %s\n", count, formatDurationHuman(retention))
		return nil
	}

	n, err := store.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("Pruned %d events older than %s\n", n, formatDurationHuman(retention))
	return nil
}

// retention resolves the effective retention period: the --older-than
// flag when given, otherwise the configured retention days.
func (c *PruneCommand) retention() (time.Duration, error) {
	if c.OlderThan != "" {
		return parseDuration(c.OlderThan)
	}
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return 0, err
	}
	return time.Duration(cfg.Retention.Days) * 24 * time.Hour, nil
}
