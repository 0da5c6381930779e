package tracker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dwelltrack/lumen/internal/logger"
	"github.com/dwelltrack/lumen/internal/storage"
)

// Recorder owns one Segmenter per device and persists the segments
// they close. It applies ignore rules before the state machine and
// redact rules at persistence time.
//
// Submit must not be called concurrently for the same device; the
// internal mutex only protects the segmenter map across devices.
type Recorder struct {
	store  *storage.Store
	log    *logger.Logger
	cfg    Config
	mu     sync.Mutex
	segs   map[string]*Segmenter
	filter *Filter
}

// NewRecorder builds a recorder over store with the given privacy
// filter. A nil filter disables privacy processing.
func NewRecorder(store *storage.Store, filter *Filter, cfg Config, log *logger.Logger) *Recorder {
	if filter == nil {
		filter = NewFilter(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{
		store:  store,
		log:    log,
		cfg:    cfg,
		segs:   make(map[string]*Segmenter),
		filter: filter,
	}
}

// SetFilter swaps the privacy filter after rule edits.
func (r *Recorder) SetFilter(f *Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filter = f
}

// Submit feeds one raw sample into the device's segmenter and persists
// any segment it closes. Samples matched by an ignore rule are dropped
// without a state transition: the open segment keeps accumulating
// against the next visible sample.
func (r *Recorder) Submit(ctx context.Context, smp Sample) error {
	r.mu.Lock()
	filter := r.filter
	seg, ok := r.segs[smp.DeviceID]
	if !ok {
		seg = NewSegmenter(r.cfg)
		r.segs[smp.DeviceID] = seg
	}
	r.mu.Unlock()

	if !smp.IsIdle && filter.Ignore(smp.WMClass, smp.Title) {
		r.log.Debug().Str("wm_class", smp.WMClass).Msg("sample ignored by privacy rule")
		return nil
	}

	return r.persist(ctx, smp.DeviceID, filter, seg.Step(smp))
}

// Flush closes every open segment at now. Called on shutdown so no
// accumulated dwell time is lost; sub-floor segments are still
// discarded.
func (r *Recorder) Flush(ctx context.Context, now time.Time) error {
	r.mu.Lock()
	filter := r.filter
	type flushTarget struct {
		device string
		seg    *Segmenter
	}
	targets := make([]flushTarget, 0, len(r.segs))
	for device, seg := range r.segs {
		targets = append(targets, flushTarget{device, seg})
	}
	r.mu.Unlock()

	for _, t := range targets {
		if err := r.persist(ctx, t.device, filter, t.seg.Flush(now)); err != nil {
			return err
		}
	}
	return nil
}

// Live returns the open segments across all devices, sorted by device
// id. This is an explicitly live-state view; open segments never
// appear in aggregation queries.
func (r *Recorder) Live() []OpenSegment {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []OpenSegment{}
	for device, seg := range r.segs {
		if open, ok := seg.Open(); ok {
			open.DeviceID = device
			out = append(out, open)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}

// persist writes closed segments as stored events. A valid event is
// never silently dropped: storage errors propagate to the caller.
func (r *Recorder) persist(ctx context.Context, deviceID string, filter *Filter, closed []Closed) error {
	for _, c := range closed {
		title := c.Title
		if !c.IsIdle && filter.Redact(c.WMClass, c.Title) {
			title = RedactedTitle
		}

		event := &storage.Event{
			ID:        uuid.NewString(),
			DeviceID:  deviceID,
			StartTime: c.Start,
			EndTime:   c.End,
			WMClass:   c.WMClass,
			Title:     title,
			IsIdle:    c.IsIdle,
		}
		if err := r.store.UpsertEvent(ctx, event); err != nil {
			r.log.Err(err).Str("wm_class", c.WMClass).Msg("failed to persist event")
			return err
		}

		r.log.Debug().
			Str("device", deviceID).
			Str("wm_class", c.WMClass).
			Float64("duration_secs", event.Duration()).
			Bool("is_idle", c.IsIdle).
			Msg("event recorded")
	}
	return nil
}
