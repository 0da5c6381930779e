package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dwelltrack/lumen/internal/logger"
	"github.com/dwelltrack/lumen/internal/storage"
	"github.com/dwelltrack/lumen/internal/syncer"
)

// Execute implements the go-flags Commander interface for SyncCommand.
func (c *SyncCommand) Execute(args []string) error {
	if c.Peer == "" {
		return fmt.Errorf("--peer is required")
	}
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

func (c *SyncCommand) executeWithStore(store *storage.Store) error {
	since, err := parseDuration(c.Since)
	if err != nil {
		return err
	}

	log := logger.Nop()
	if c.globals.Verbose {
		log = logger.NewStdout("sync", "debug")
	}

	client := syncer.New(c.Peer, store, log)
	now := time.Now()
	n, err := client.Pull(context.Background(), now.Add(-since), now)
	if err != nil {
		return fmt.Errorf("sync from %s: %w", c.Peer, err)
	}
	fmt.Printf("Merged %d events from %s\n", n, c.Peer)
	return nil
}
