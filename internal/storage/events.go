package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// validateEvent rejects events that must never be persisted.
func validateEvent(e *Event) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: event id is required", ErrValidation)
	case e.DeviceID == "":
		return fmt.Errorf("%w: device id is required", ErrValidation)
	case e.WMClass == "":
		return fmt.Errorf("%w: wm_class is required", ErrValidation)
	case !e.EndTime.After(e.StartTime):
		return fmt.Errorf("%w: end time %s is not after start time %s",
			ErrValidation, e.EndTime.Format(time.RFC3339), e.StartTime.Format(time.RFC3339))
	}
	return nil
}

// UpsertEvent inserts an event, replacing any existing row with the
// same id. Replay and sync are therefore idempotent: inserting the
// same id twice yields exactly one row with the later write's fields.
func (s *Store) UpsertEvent(ctx context.Context, e *Event) error {
	if err := validateEvent(e); err != nil {
		return err
	}

	_, err := s.upsertEvent.ExecContext(ctx,
		e.ID, e.DeviceID, formatTS(e.StartTime), formatTS(e.EndTime),
		e.WMClass, e.Title, e.IsIdle,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert event: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// QueryRange returns events whose [start,end) interval intersects
// [q.Start, q.End), ordered by start time ascending. An empty device
// list matches all devices.
func (s *Store) QueryRange(ctx context.Context, q RangeQuery) ([]Event, error) {
	if !q.End.After(q.Start) {
		return nil, fmt.Errorf("%w: end %s is not after start %s",
			ErrInvalidRange, q.End.Format(time.RFC3339), q.Start.Format(time.RFC3339))
	}

	b := builder().
		Select("id", "device_id", "start_ts", "end_ts", "wm_class", "title", "is_idle").
		From("events").
		Where(sq.Gt{"end_ts": formatTS(q.Start)}).
		Where(sq.Lt{"start_ts": formatTS(q.End)}).
		OrderBy("start_ts ASC")

	if len(q.Devices) > 0 {
		b = b.Where(sq.Eq{"device_id": q.Devices})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build range query: %w", err)
	}

	return s.scanEvents(ctx, query, args...)
}

func (s *Store) scanEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query events: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var startStr, endStr string
		if err := rows.Scan(&e.ID, &e.DeviceID, &startStr, &endStr, &e.WMClass, &e.Title, &e.IsIdle); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if e.StartTime, err = parseTS(startStr); err != nil {
			return nil, err
		}
		if e.EndTime, err = parseTS(endStr); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// PurgeOlderThan deletes events that ended before cutoff and returns
// the number of rows removed. Irreversible.
func (s *Store) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM events WHERE end_ts < ?", formatTS(cutoff))
	if err != nil {
		return 0, fmt.Errorf("%w: purge events: %v", ErrStorageUnavailable, err)
	}
	return res.RowsAffected()
}

// PurgeAll deletes every stored event. Categories and privacy rules
// are kept.
func (s *Store) PurgeAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM events"); err != nil {
		return fmt.Errorf("%w: purge all: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Stats returns aggregate statistics about the stored events.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&stats.TotalEvents)
	if err != nil {
		return nil, fmt.Errorf("%w: count events: %v", ErrStorageUnavailable, err)
	}

	if stats.TotalEvents > 0 {
		var oldestStr, newestStr string
		err = s.db.QueryRowContext(ctx, "SELECT MIN(start_ts), MAX(end_ts) FROM events").
			Scan(&oldestStr, &newestStr)
		if err != nil {
			return nil, fmt.Errorf("event time range: %w", err)
		}
		if stats.OldestEvent, err = parseTS(oldestStr); err != nil {
			return nil, err
		}
		if stats.NewestEvent, err = parseTS(newestStr); err != nil {
			return nil, err
		}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT device_id FROM events ORDER BY device_id")
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		stats.Devices = append(stats.Devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	topRows, err := s.db.QueryContext(ctx, `
		SELECT wm_class, COUNT(*) AS cnt FROM events
		WHERE is_idle = 0
		GROUP BY wm_class ORDER BY cnt DESC LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("top apps: %w", err)
	}
	defer topRows.Close()
	for topRows.Next() {
		var ac AppCount
		if err := topRows.Scan(&ac.WMClass, &ac.Count); err != nil {
			return nil, err
		}
		stats.TopApps = append(stats.TopApps, ac)
	}

	return stats, topRows.Err()
}
