package aggregate

import (
	"context"

	"github.com/dwelltrack/lumen/internal/storage"
)

// GoalStatus reports daily goal/limit progress for one category.
// Nothing here is stored; it is recomputed from events on every call.
type GoalStatus struct {
	CategoryID  string  `json:"category_id"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	UsageSecs   float64 `json:"usage_secs"`
	GoalSecs    int64   `json:"daily_goal_secs,omitempty"`
	LimitSecs   int64   `json:"daily_limit_secs,omitempty"`
	ProgressPct float64 `json:"progress_pct"`
	OverLimit   bool    `json:"over_limit"`
}

// Goals evaluates goal/limit progress for every category that has a
// daily goal or limit set, over the given range (typically one day).
// Progress is capped at 100%.
func (a *Aggregator) Goals(ctx context.Context, q storage.RangeQuery) ([]GoalStatus, error) {
	events, rules, err := a.load(ctx, q)
	if err != nil {
		return nil, err
	}
	cats, err := a.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	usage := map[string]float64{}
	for i := range events {
		e := &events[i]
		if e.IsIdle {
			continue
		}
		label := rules.Event(e)
		if label.CategoryID != "" {
			usage[label.CategoryID] += e.Duration()
		}
	}

	out := []GoalStatus{}
	for _, c := range cats {
		if c.DailyGoalSecs <= 0 && c.DailyLimitSecs <= 0 {
			continue
		}
		gs := GoalStatus{
			CategoryID: c.ID,
			Name:       c.Name,
			Color:      c.Color,
			UsageSecs:  usage[c.ID],
			GoalSecs:   c.DailyGoalSecs,
			LimitSecs:  c.DailyLimitSecs,
		}
		if c.DailyGoalSecs > 0 {
			gs.ProgressPct = gs.UsageSecs / float64(c.DailyGoalSecs) * 100
			if gs.ProgressPct > 100 {
				gs.ProgressPct = 100
			}
		}
		if c.DailyLimitSecs > 0 && gs.UsageSecs > float64(c.DailyLimitSecs) {
			gs.OverLimit = true
		}
		out = append(out, gs)
	}

	return out, nil
}
