package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dwelltrack/lumen/internal/aggregate"
	"github.com/dwelltrack/lumen/internal/storage"
)

// Execute implements the go-flags Commander interface for ReportCommand.
func (c *ReportCommand) Execute(args []string) error {
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

// executeWithStore runs the report against a provided store (used by tests).
func (c *ReportCommand) executeWithStore(store *storage.Store) error {
	ctx := context.Background()
	agg := aggregate.New(store)

	switch c.View {
	case "summary":
		return c.renderSummary(ctx, agg)
	case "timeline":
		return c.renderTimeline(ctx, agg)
	case "history":
		return c.renderHistory(ctx, agg)
	case "metrics":
		return c.renderMetrics(ctx, agg)
	case "goals":
		return c.renderGoals(ctx, agg)
	default:
		return fmt.Errorf("unknown view %q (use summary, timeline, history, metrics or goals)", c.View)
	}
}

func (c *ReportCommand) printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *ReportCommand) renderSummary(ctx context.Context, agg *aggregate.Aggregator) error {
	q, err := reportRange(c.Date, c.Device)
	if err != nil {
		return err
	}
	rows, err := agg.Summary(ctx, q)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return c.printJSON(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No activity recorded.")
		return nil
	}
	fmt.Printf("%-24s %-16s %10s %8s\n", "APP", "CATEGORY", "TIME", "EVENTS")
	for _, r := range rows {
		fmt.Printf("%-24s %-16s %10s %8d\n", r.WMClass, r.Category, formatSecs(r.TotalSecs), r.EventCount)
	}
	return nil
}

func (c *ReportCommand) renderTimeline(ctx context.Context, agg *aggregate.Aggregator) error {
	q, err := reportRange(c.Date, c.Device)
	if err != nil {
		return err
	}
	blocks, err := agg.Timeline(ctx, q)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return c.printJSON(blocks)
	}

	if len(blocks) == 0 {
		fmt.Println("No activity recorded.")
		return nil
	}
	for _, b := range blocks {
		label := b.Category
		if b.IsIdle {
			label = "(idle)"
		}
		fmt.Printf("%s - %s  %-16s %-24s %s\n",
			b.Start.Local().Format("15:04:05"),
			b.End.Local().Format("15:04:05"),
			label, b.WMClass, formatSecs(b.DurationSecs))
	}
	return nil
}

func (c *ReportCommand) renderHistory(ctx context.Context, agg *aggregate.Aggregator) error {
	days := c.Days
	if days <= 0 {
		days = 7
	}
	_, end := aggregate.DayRange(time.Now())
	q := storage.RangeQuery{Devices: c.Device, Start: end.AddDate(0, 0, -days), End: end}

	rows, err := agg.History(ctx, q)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return c.printJSON(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No activity recorded.")
		return nil
	}
	fmt.Printf("%-12s %10s %10s %8s\n", "DAY", "ACTIVE", "IDLE", "EVENTS")
	for _, r := range rows {
		fmt.Printf("%-12s %10s %10s %8d\n", r.Day, formatSecs(r.ActiveSecs), formatSecs(r.IdleSecs), r.EventCount)
	}
	return nil
}

func (c *ReportCommand) renderMetrics(ctx context.Context, agg *aggregate.Aggregator) error {
	q, err := reportRange(c.Date, c.Device)
	if err != nil {
		return err
	}
	m, err := agg.Metrics(ctx, q)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return c.printJSON(m)
	}

	fmt.Printf("Active time:      %s\n", formatSecs(m.ActiveSecs))
	fmt.Printf("Idle time:        %s\n", formatSecs(m.IdleSecs))
	fmt.Printf("Context switches: %d\n", m.ContextSwitches)
	if m.FocusScore == aggregate.NoFocusScore {
		fmt.Println("Focus score:      n/a (no active time)")
	} else {
		fmt.Printf("Focus score:      %.0f/100\n", m.FocusScore)
	}
	return nil
}

func (c *ReportCommand) renderGoals(ctx context.Context, agg *aggregate.Aggregator) error {
	q, err := reportRange(c.Date, c.Device)
	if err != nil {
		return err
	}
	rows, err := agg.Goals(ctx, q)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return c.printJSON(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No categories with goals or limits.")
		return nil
	}
	for _, g := range rows {
		line := fmt.Sprintf("%-16s %10s", g.Name, formatSecs(g.UsageSecs))
		if g.GoalSecs > 0 {
			line += fmt.Sprintf("  goal %s (%.0f%%)", formatSecs(float64(g.GoalSecs)), g.ProgressPct)
		}
		if g.LimitSecs > 0 {
			if g.OverLimit {
				line += fmt.Sprintf("  OVER limit %s", formatSecs(float64(g.LimitSecs)))
			} else {
				line += fmt.Sprintf("  limit %s", formatSecs(float64(g.LimitSecs)))
			}
		}
		fmt.Println(line)
	}
	return nil
}
