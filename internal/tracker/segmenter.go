// Package tracker converts raw foreground-window samples into closed
// dwell events. The Segmenter is a pure per-device state machine; the
// Recorder binds segmenters to the store and applies privacy rules.
package tracker

import (
	"time"

	"github.com/dwelltrack/lumen/internal/storage"
)

// Sample is one poll observation from a platform poller.
type Sample struct {
	DeviceID string
	WMClass  string
	Title    string
	IsIdle   bool
	Time     time.Time
}

// Closed is a finished segment produced by the Segmenter, not yet
// persisted. The Recorder turns it into a storage.Event.
type Closed struct {
	WMClass string
	Title   string
	IsIdle  bool
	Start   time.Time
	End     time.Time
}

// OpenSegment describes the in-progress segment of one device. It is
// live state only and never appears in historical queries.
type OpenSegment struct {
	DeviceID   string
	WMClass    string
	Title      string
	IsIdle     bool
	Start      time.Time
	LastSample time.Time
}

// Config carries the segmentation thresholds.
type Config struct {
	// MinDuration discards segments shorter than this floor, so poll
	// jitter cannot generate noise events.
	MinDuration time.Duration
	// SuspendGap is the wall-clock delta between consecutive samples
	// above which the host is assumed to have been suspended (or the
	// poller stalled). The open segment then closes at the last known
	// sample time so the inferred dwell time excludes the gap.
	SuspendGap time.Duration
}

// DefaultConfig matches the stock poll interval of 5s.
func DefaultConfig() Config {
	return Config{
		MinDuration: 1 * time.Second,
		SuspendGap:  20 * time.Second,
	}
}

// Segmenter holds the open-segment state for a single device. It is
// an explicit value stepped by its owner; it performs no I/O and is
// not safe for concurrent use.
type Segmenter struct {
	cfg Config

	open       bool
	wmClass    string
	title      string
	isIdle     bool
	start      time.Time
	lastSample time.Time
}

// NewSegmenter returns a segmenter with no active segment.
func NewSegmenter(cfg Config) *Segmenter {
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = DefaultConfig().MinDuration
	}
	if cfg.SuspendGap <= 0 {
		cfg.SuspendGap = DefaultConfig().SuspendGap
	}
	return &Segmenter{cfg: cfg}
}

// normalize collapses the identity of idle samples: all idle dwell is
// one sentinel app with no title.
func normalize(s Sample) Sample {
	if s.IsIdle {
		s.WMClass = storage.IdleWMClass
		s.Title = ""
	}
	return s
}

// Step feeds one sample through the state machine and returns any
// segments it closed (zero or one). Sub-floor segments are discarded,
// not returned.
func (s *Segmenter) Step(smp Sample) []Closed {
	smp = normalize(smp)
	var closed []Closed

	if s.open && smp.Time.Sub(s.lastSample) > s.cfg.SuspendGap {
		// Suspend/resume gap: the time between the last sample and now
		// was not spent in the open segment. Close at the last known
		// sample time and start fresh.
		if c, ok := s.close(s.lastSample); ok {
			closed = append(closed, c)
		}
		s.openSegment(smp)
		return closed
	}

	if !s.open {
		s.openSegment(smp)
		return closed
	}

	if smp.WMClass == s.wmClass && smp.Title == s.title && smp.IsIdle == s.isIdle {
		// Still accumulating.
		s.lastSample = smp.Time
		return closed
	}

	if c, ok := s.close(smp.Time); ok {
		closed = append(closed, c)
	}
	s.openSegment(smp)
	return closed
}

// Flush unconditionally closes the open segment at now. Used on
// shutdown; the duration floor still applies.
func (s *Segmenter) Flush(now time.Time) []Closed {
	if !s.open {
		return nil
	}
	c, ok := s.close(now)
	s.open = false
	if !ok {
		return nil
	}
	return []Closed{c}
}

// Open reports the current open segment, if any.
func (s *Segmenter) Open() (OpenSegment, bool) {
	if !s.open {
		return OpenSegment{}, false
	}
	return OpenSegment{
		WMClass:    s.wmClass,
		Title:      s.title,
		IsIdle:     s.isIdle,
		Start:      s.start,
		LastSample: s.lastSample,
	}, true
}

func (s *Segmenter) openSegment(smp Sample) {
	s.open = true
	s.wmClass = smp.WMClass
	s.title = smp.Title
	s.isIdle = smp.IsIdle
	s.start = smp.Time
	s.lastSample = smp.Time
}

// close ends the open segment at end. Returns false when the segment
// falls under the duration floor and is discarded.
func (s *Segmenter) close(end time.Time) (Closed, bool) {
	s.open = false
	if end.Sub(s.start) < s.cfg.MinDuration {
		return Closed{}, false
	}
	return Closed{
		WMClass: s.wmClass,
		Title:   s.title,
		IsIdle:  s.isIdle,
		Start:   s.start,
		End:     end,
	}, true
}
