package aggregate

import (
	"context"
	"time"

	"github.com/dwelltrack/lumen/internal/storage"
)

// mergeGap is the largest gap between consecutive events that still
// counts as contiguous for timeline merging. Anything larger renders
// as separate blocks.
const mergeGap = time.Second

// Block is one rendered timeline segment. Consecutive events with the
// same classified label merge into a single block so rapid app-switch
// sequences don't produce rendering noise.
type Block struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	WMClass      string    `json:"wm_class"`
	Title        string    `json:"title"`
	IsIdle       bool      `json:"is_idle"`
	Category     string    `json:"category"`
	Color        string    `json:"color"`
	DurationSecs float64   `json:"duration_secs"`
	EventCount   int       `json:"event_count"`
}

// Timeline returns the range's events as chronological blocks.
// Immediately consecutive events (gap <= 1s) with the same classified
// label merge; a merged block keeps the first event's wm_class and
// title. Merging never crosses an idle boundary.
func (a *Aggregator) Timeline(ctx context.Context, q storage.RangeQuery) ([]Block, error) {
	events, rules, err := a.load(ctx, q)
	if err != nil {
		return nil, err
	}

	blocks := []Block{}
	for i := range events {
		e := &events[i]
		label := rules.Event(e)

		if n := len(blocks); n > 0 {
			last := &blocks[n-1]
			contiguous := e.StartTime.Sub(last.End) <= mergeGap
			if contiguous && last.IsIdle == e.IsIdle && last.Category == label.Name {
				last.End = e.EndTime
				last.DurationSecs += e.Duration()
				last.EventCount++
				continue
			}
		}

		blocks = append(blocks, Block{
			Start:        e.StartTime,
			End:          e.EndTime,
			WMClass:      e.WMClass,
			Title:        e.Title,
			IsIdle:       e.IsIdle,
			Category:     label.Name,
			Color:        label.Color,
			DurationSecs: e.Duration(),
			EventCount:   1,
		})
	}

	return blocks, nil
}
