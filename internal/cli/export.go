package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dwelltrack/lumen/internal/export"
	"github.com/dwelltrack/lumen/internal/storage"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
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

func (c *ExportCommand) executeWithStore(store *storage.Store) error {
	since, err := parseDuration(c.Since)
	if err != nil {
		return err
	}
	if c.Format != export.FormatJSON && c.Format != export.FormatCSV {
		return fmt.Errorf("unknown format %q (use json or csv)", c.Format)
	}

	var w io.Writer = os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	now := time.Now()
	q := storage.RangeQuery{Devices: c.Device, Start: now.Add(-since), End: now}
	if err := export.Write(context.Background(), store, q, c.Format, w); err != nil {
		return err
	}
	if c.Output != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", c.Output)
	}
	return nil
}
