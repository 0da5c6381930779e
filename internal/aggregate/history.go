package aggregate

import (
	"context"
	"sort"

	"github.com/dwelltrack/lumen/internal/storage"
)

// DayTotal summarizes one local calendar day.
type DayTotal struct {
	Day        string  `json:"day"` // YYYY-MM-DD, local time
	ActiveSecs float64 `json:"active_secs"`
	IdleSecs   float64 `json:"idle_secs"`
	EventCount int     `json:"event_count"`
}

// History returns per-day totals for the range, ordered by day
// ascending. Day boundaries use the local calendar day of the event's
// start time. Days with no events are omitted.
func (a *Aggregator) History(ctx context.Context, q storage.RangeQuery) ([]DayTotal, error) {
	events, err := a.store.QueryRange(ctx, q)
	if err != nil {
		return nil, err
	}

	byDay := map[string]*DayTotal{}
	for i := range events {
		e := &events[i]
		day := e.StartTime.Local().Format("2006-01-02")
		dt, ok := byDay[day]
		if !ok {
			dt = &DayTotal{Day: day}
			byDay[day] = dt
		}
		if e.IsIdle {
			dt.IdleSecs += e.Duration()
		} else {
			dt.ActiveSecs += e.Duration()
		}
		dt.EventCount++
	}

	out := []DayTotal{}
	for _, dt := range byDay {
		out = append(out, *dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}
