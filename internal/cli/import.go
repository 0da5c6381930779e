package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dwelltrack/lumen/internal/export"
	"github.com/dwelltrack/lumen/internal/storage"
)

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	if c.File == "" {
		return fmt.Errorf("--file is required")
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

func (c *ImportCommand) executeWithStore(store *storage.Store) error {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	n, err := export.Read(context.Background(), store, f)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d events from %s\n", n, c.File)
	return nil
}
