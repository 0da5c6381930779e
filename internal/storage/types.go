package storage

import "time"

// Sentinel wm_class recorded for idle periods.
const IdleWMClass = "__idle__"

// Event is a closed interval of continuous same-app (or idle) dwell
// time on one device. Immutable once stored.
type Event struct {
	ID        string
	DeviceID  string
	StartTime time.Time
	EndTime   time.Time
	WMClass   string
	Title     string
	IsIdle    bool
}

// Duration returns the event length in seconds. Not stored; always
// derived from the timestamps.
func (e *Event) Duration() float64 {
	return e.EndTime.Sub(e.StartTime).Seconds()
}

// Category is a user-defined classification rule. Categories are never
// referenced from events; classification happens at query time so
// edits retroactively recolor history.
type Category struct {
	ID             string
	Name           string
	Color          string
	WMClassPattern string
	TitlePattern   string
	CaseSensitive  bool
	// Priority orders classification, lowest first. Zero means unset
	// and is defaulted on upsert; negative values outrank everything.
	Priority       int
	DailyGoalSecs  int64
	DailyLimitSecs int64
}

// Privacy rule types.
const (
	RuleIgnore = "ignore" // drop matching samples before segmentation
	RuleRedact = "redact" // scrub the title at persistence time
)

// PrivacyRule suppresses or redacts matching activity before it is
// persisted. Redaction is permanent.
type PrivacyRule struct {
	ID             string
	RuleType       string
	WMClassPattern string
	TitlePattern   string
}

// RangeQuery selects events whose [start,end) interval intersects
// [Start,End). An empty Devices slice matches all devices.
type RangeQuery struct {
	Devices []string
	Start   time.Time
	End     time.Time
}

// Stats holds aggregate statistics for the status command.
type Stats struct {
	TotalEvents int64
	OldestEvent time.Time
	NewestEvent time.Time
	Devices     []string
	TopApps     []AppCount
}

// AppCount pairs a wm_class with its stored event count.
type AppCount struct {
	WMClass string
	Count   int64
}
