package aggregate

import (
	"context"

	"github.com/dwelltrack/lumen/internal/storage"
)

// NoFocusScore is reported when the range has no active time: the
// focus score is undefined rather than zero.
const NoFocusScore = -1

// Metrics carries the derived focus numbers for a range.
type Metrics struct {
	ContextSwitches int     `json:"context_switches"`
	ActiveSecs      float64 `json:"active_secs"`
	IdleSecs        float64 `json:"idle_secs"`
	ActiveHours     float64 `json:"active_hours"`
	FocusScore      float64 `json:"focus_score"`
}

// Metrics computes the context-switch count and focus score for a
// range. A switch is a non-idle to non-idle app transition; an idle
// event in between represents a break and resets the transition
// chain, so it never counts as fragmentation. Each device has its own
// chain: interleaved events from parallel devices are not switches.
func (a *Aggregator) Metrics(ctx context.Context, q storage.RangeQuery) (*Metrics, error) {
	events, err := a.store.QueryRange(ctx, q)
	if err != nil {
		return nil, err
	}

	m := &Metrics{}
	prevApp := map[string]string{}
	for i := range events {
		e := &events[i]
		if e.IsIdle {
			m.IdleSecs += e.Duration()
			prevApp[e.DeviceID] = ""
			continue
		}
		m.ActiveSecs += e.Duration()
		if prev := prevApp[e.DeviceID]; prev != "" && prev != e.WMClass {
			m.ContextSwitches++
		}
		prevApp[e.DeviceID] = e.WMClass
	}

	m.ActiveHours = m.ActiveSecs / 3600
	m.FocusScore = focusScore(m.ContextSwitches, m.ActiveHours)
	return m, nil
}

// focusScore maps switch frequency to a 0-100 score, monotonically
// non-increasing in switches per active hour. Six switches per hour
// lands at 50.
func focusScore(switches int, activeHours float64) float64 {
	if activeHours <= 0 {
		return NoFocusScore
	}
	rate := float64(switches) / activeHours
	score := 100 / (1 + rate/6)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
