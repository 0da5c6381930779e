package aggregate

import (
	"context"
	"sort"
	"time"

	"github.com/dwelltrack/lumen/internal/classify"
	"github.com/dwelltrack/lumen/internal/storage"
)

// AppSummary is the per-app usage total for a range. Field names match
// the existing dashboard API contract.
type AppSummary struct {
	WMClass    string    `json:"wm_class"`
	TotalSecs  float64   `json:"total_secs"`
	EventCount int       `json:"event_count"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
	Category   string    `json:"category"`
	Color      string    `json:"color"`
}

// Summary groups the range's events by wm_class, sums durations and
// attaches category name/color, sorted descending by total. Idle
// events are excluded. When events of one app classify differently
// (title patterns), the label with the largest summed duration wins.
func (a *Aggregator) Summary(ctx context.Context, q storage.RangeQuery) ([]AppSummary, error) {
	events, rules, err := a.load(ctx, q)
	if err != nil {
		return nil, err
	}

	type appAccum struct {
		summary     AppSummary
		labelWeight map[string]float64
		labels      map[string]classify.Label
	}

	byApp := map[string]*appAccum{}
	for i := range events {
		e := &events[i]
		if e.IsIdle {
			continue
		}

		acc, ok := byApp[e.WMClass]
		if !ok {
			acc = &appAccum{
				summary:     AppSummary{WMClass: e.WMClass, FirstSeen: e.StartTime, LastSeen: e.EndTime},
				labelWeight: map[string]float64{},
				labels:      map[string]classify.Label{},
			}
			byApp[e.WMClass] = acc
		}

		d := e.Duration()
		acc.summary.TotalSecs += d
		acc.summary.EventCount++
		if e.StartTime.Before(acc.summary.FirstSeen) {
			acc.summary.FirstSeen = e.StartTime
		}
		if e.EndTime.After(acc.summary.LastSeen) {
			acc.summary.LastSeen = e.EndTime
		}

		label := rules.Event(e)
		acc.labelWeight[label.Name] += d
		acc.labels[label.Name] = label
	}

	out := []AppSummary{}
	for _, acc := range byApp {
		best := classify.Uncategorized
		bestWeight := -1.0
		for name, w := range acc.labelWeight {
			if w > bestWeight {
				best = acc.labels[name]
				bestWeight = w
			}
		}
		acc.summary.Category = best.Name
		acc.summary.Color = best.Color
		out = append(out, acc.summary)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSecs != out[j].TotalSecs {
			return out[i].TotalSecs > out[j].TotalSecs
		}
		return out[i].WMClass < out[j].WMClass
	})
	return out, nil
}
