package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dwelltrack/lumen/internal/storage"
)

// Execute implements the go-flags Commander interface for CategoryCommand.
func (c *CategoryCommand) Execute(args []string) error {
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

func (c *CategoryCommand) executeWithStore(store *storage.Store) error {
	ctx := context.Background()

	switch {
	case c.Remove != "":
		if err := store.DeleteCategory(ctx, c.Remove); err != nil {
			return err
		}
		fmt.Printf("Removed category %s\n", c.Remove)
		return nil

	case c.Add != "":
		cat := storage.Category{
			Name:           c.Add,
			Color:          c.Color,
			WMClassPattern: c.Pattern,
			TitlePattern:   c.Title,
			Priority:       c.Priority,
		}
		if c.Goal != "" {
			d, err := parseDuration(c.Goal)
			if err != nil {
				return err
			}
			cat.DailyGoalSecs = int64(d.Seconds())
		}
		if c.Limit != "" {
			d, err := parseDuration(c.Limit)
			if err != nil {
				return err
			}
			cat.DailyLimitSecs = int64(d.Seconds())
		}
		if err := store.UpsertCategory(ctx, &cat); err != nil {
			return err
		}
		fmt.Printf("Saved category %s (%s)\n", cat.Name, cat.ID)
		return nil

	default:
		return c.list(ctx, store)
	}
}

func (c *CategoryCommand) list(ctx context.Context, store *storage.Store) error {
	cats, err := store.ListCategories(ctx)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cats)
	}

	if len(cats) == 0 {
		fmt.Println("No categories defined.")
		return nil
	}
	fmt.Printf("%-16s %8s %-30s %s\n", "NAME", "PRIORITY", "CLASS PATTERN", "TITLE PATTERN")
	for _, cat := range cats {
		fmt.Printf("%-16s %8d %-30s %s\n", cat.Name, cat.Priority, cat.WMClassPattern, cat.TitlePattern)
	}
	return nil
}
