// Package aggregate derives read-only views (summary, timeline,
// history, focus metrics, goal status) from stored events. Every view
// classifies events at query time, so category edits retroactively
// recolor history without any migration.
package aggregate

import (
	"context"
	"time"

	"github.com/dwelltrack/lumen/internal/classify"
	"github.com/dwelltrack/lumen/internal/storage"
)

// Aggregator is the query layer over the event store. It holds no
// state of its own; each call loads the current category set.
type Aggregator struct {
	store *storage.Store
}

// New returns an aggregator over store.
func New(store *storage.Store) *Aggregator {
	return &Aggregator{store: store}
}

// load fetches the events in range plus a freshly compiled ruleset.
// Range validation happens in QueryRange: end <= start fails with
// storage.ErrInvalidRange.
func (a *Aggregator) load(ctx context.Context, q storage.RangeQuery) ([]storage.Event, *classify.Ruleset, error) {
	events, err := a.store.QueryRange(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	cats, err := a.store.ListCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	return events, classify.NewRuleset(cats), nil
}

// DayRange returns the local-time [midnight, next midnight) range for
// the day containing t.
func DayRange(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Local().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 0, 1)
}
