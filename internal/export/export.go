// Package export serializes stored events for backup, spreadsheets
// and peer sync. Import is idempotent: re-importing an export into the
// same or another store upserts by event id and never duplicates.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dwelltrack/lumen/internal/storage"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Record is the wire form of one event. Field names follow the
// existing dashboard API contract.
type Record struct {
	ID           string    `json:"id"`
	DeviceID     string    `json:"device_id"`
	StartTime    time.Time `json:"start_ts"`
	EndTime      time.Time `json:"end_ts"`
	WMClass      string    `json:"wm_class"`
	Title        string    `json:"title"`
	IsIdle       bool      `json:"is_idle"`
	DurationSecs float64   `json:"duration_secs"`
}

func toRecord(e *storage.Event) Record {
	return Record{
		ID:           e.ID,
		DeviceID:     e.DeviceID,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		WMClass:      e.WMClass,
		Title:        e.Title,
		IsIdle:       e.IsIdle,
		DurationSecs: e.Duration(),
	}
}

func (r *Record) toEvent() storage.Event {
	return storage.Event{
		ID:        r.ID,
		DeviceID:  r.DeviceID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		WMClass:   r.WMClass,
		Title:     r.Title,
		IsIdle:    r.IsIdle,
	}
}

// Records loads the events in range as wire records.
func Records(ctx context.Context, store *storage.Store, q storage.RangeQuery) ([]Record, error) {
	events, err := store.QueryRange(ctx, q)
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(events))
	for i := range events {
		records[i] = toRecord(&events[i])
	}
	return records, nil
}

// Write exports the events in range to w in the given format.
func Write(ctx context.Context, store *storage.Store, q storage.RangeQuery, format string, w io.Writer) error {
	records, err := Records(ctx, store, q)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatCSV:
		return writeCSV(records, w)
	default:
		return fmt.Errorf("unsupported export format: %q", format)
	}
}

func writeCSV(records []Record, w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "device_id", "start_ts", "end_ts", "wm_class", "title", "is_idle", "duration_secs"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.DeviceID,
			r.StartTime.UTC().Format(time.RFC3339Nano),
			r.EndTime.UTC().Format(time.RFC3339Nano),
			r.WMClass,
			r.Title,
			strconv.FormatBool(r.IsIdle),
			strconv.FormatFloat(r.DurationSecs, 'f', 1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read parses a JSON export from r and upserts every event. Events
// failing validation are rejected with the storage error; nothing is
// partially written within the failing record. Returns the number of
// events imported.
func Read(ctx context.Context, store *storage.Store, r io.Reader) (int, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("decode export: %w", err)
	}

	return Upsert(ctx, store, records)
}

// Upsert writes the given records into store by idempotent upsert.
func Upsert(ctx context.Context, store *storage.Store, records []Record) (int, error) {
	n := 0
	for i := range records {
		event := records[i].toEvent()
		if err := store.UpsertEvent(ctx, &event); err != nil {
			return n, fmt.Errorf("import event %s: %w", records[i].ID, err)
		}
		n++
	}
	return n, nil
}
