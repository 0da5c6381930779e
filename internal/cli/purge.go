package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dwelltrack/lumen/internal/storage"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	// Confirmation prompt unless --force
	if !c.Force {
		fmt.Println("⚠ WARNING: This will permanently delete ALL recorded activity.")
		fmt.Println("  - All activity events, on every device tracked in this database")
		fmt.Println()
		fmt.Println("Categories and privacy rules are kept. This action cannot be undone.")
		fmt.Println()
		fmt.Print(`Type "PURGE" to confirm: `)

		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		input := strings.TrimSpace(scanner.Text())
		if input != "PURGE" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
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

func (c *PurgeCommand) executeWithStore(store *storage.Store) error {
	if err := store.PurgeAll(context.Background()); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	if c.globals.JSON {
		out := map[string]any{
			"purged":  true,
			"message": "all events deleted",
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	fmt.Println("Purged all events. The activity log is empty.")
	return nil
}
