package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dwelltrack/lumen/internal/config"
	"github.com/dwelltrack/lumen/internal/storage"
)

// Execute implements the go-flags Commander interface for RuleCommand.
func (c *RuleCommand) Execute(args []string) error {
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

func (c *RuleCommand) executeWithStore(store *storage.Store) error {
	ctx := context.Background()

	switch {
	case c.Init:
		defaults := config.DefaultPrivacyRules()
		for i := range defaults {
			if err := store.UpsertRule(ctx, &defaults[i]); err != nil {
				return err
			}
		}
		fmt.Printf("Installed %d default privacy rules\n", len(defaults))
		return nil

	case c.Remove != "":
		if err := store.DeleteRule(ctx, c.Remove); err != nil {
			return err
		}
		fmt.Printf("Removed rule %s\n", c.Remove)
		return nil

	case c.Add != "":
		rule := storage.PrivacyRule{
			RuleType:       c.Add,
			WMClassPattern: c.Pattern,
			TitlePattern:   c.Title,
		}
		if err := store.UpsertRule(ctx, &rule); err != nil {
			return err
		}
		fmt.Printf("Saved %s rule (%s)\n", rule.RuleType, rule.ID)
		return nil

	default:
		return c.list(ctx, store)
	}
}

func (c *RuleCommand) list(ctx context.Context, store *storage.Store) error {
	rules, err := store.ListRules(ctx)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rules)
	}

	if len(rules) == 0 {
		fmt.Println("No privacy rules defined. Run 'lumen rule --init' to install defaults.")
		return nil
	}
	fmt.Printf("%-38s %-8s %-30s %s\n", "ID", "TYPE", "CLASS PATTERN", "TITLE PATTERN")
	for _, r := range rules {
		fmt.Printf("%-38s %-8s %-30s %s\n", r.ID, r.RuleType, r.WMClassPattern, r.TitlePattern)
	}
	return nil
}
