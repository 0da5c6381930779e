package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwelltrack/lumen/internal/storage"
)

var t0 = time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner := storage.NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	store, err := storage.NewStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func seed(t *testing.T, store *storage.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.UpsertEvent(ctx, &storage.Event{
		ID: "e1", DeviceID: "dev1", StartTime: t0, EndTime: t0.Add(5 * time.Minute),
		WMClass: "code", Title: "main.go",
	}))
	require.NoError(t, store.UpsertEvent(ctx, &storage.Event{
		ID: "e2", DeviceID: "dev1", StartTime: t0.Add(5 * time.Minute), EndTime: t0.Add(10 * time.Minute),
		WMClass: storage.IdleWMClass, IsIdle: true,
	}))
}

func fullRange() storage.RangeQuery {
	return storage.RangeQuery{Start: t0.Add(-time.Hour), End: t0.Add(time.Hour)}
}

func TestWriteJSON_RoundtripsThroughRead(t *testing.T) {
	src := openTestStore(t)
	seed(t, src)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, Write(ctx, src, fullRange(), FormatJSON, &buf))

	dst := openTestStore(t)
	n, err := Read(ctx, dst, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	events, err := dst.QueryRange(ctx, fullRange())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, "code", events[0].WMClass)
	assert.True(t, events[0].StartTime.Equal(t0))
	assert.True(t, events[1].IsIdle)
}

func TestRead_Idempotent(t *testing.T) {
	src := openTestStore(t)
	seed(t, src)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, Write(ctx, src, fullRange(), FormatJSON, &buf))
	data := buf.Bytes()

	dst := openTestStore(t)
	_, err := Read(ctx, dst, bytes.NewReader(data))
	require.NoError(t, err)
	_, err = Read(ctx, dst, bytes.NewReader(data))
	require.NoError(t, err)

	events, err := dst.QueryRange(ctx, fullRange())
	require.NoError(t, err)
	assert.Len(t, events, 2, "re-import must not duplicate events")
}

func TestWriteCSV(t *testing.T) {
	store := openTestStore(t)
	seed(t, store)

	var buf bytes.Buffer
	require.NoError(t, Write(context.Background(), store, fullRange(), FormatCSV, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two events")

	assert.Equal(t, []string{"id", "device_id", "start_ts", "end_ts", "wm_class", "title", "is_idle", "duration_secs"}, rows[0])
	assert.Equal(t, "e1", rows[1][0])
	assert.Equal(t, "code", rows[1][4])
	assert.Equal(t, "false", rows[1][6])
	assert.Equal(t, "300.0", rows[1][7])
	assert.Equal(t, "true", rows[2][6])
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	store := openTestStore(t)

	err := Write(context.Background(), store, fullRange(), "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestWriteJSON_EmptyRangeIsEmptyArray(t *testing.T) {
	store := openTestStore(t)

	var buf bytes.Buffer
	require.NoError(t, Write(context.Background(), store, fullRange(), FormatJSON, &buf))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestRead_MalformedJSON(t *testing.T) {
	store := openTestStore(t)

	_, err := Read(context.Background(), store, strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestRead_RejectsInvalidEvents(t *testing.T) {
	store := openTestStore(t)

	payload := `[{"id":"","device_id":"d","start_ts":"2026-01-02T09:00:00Z","end_ts":"2026-01-02T09:05:00Z","wm_class":"code"}]`
	n, err := Read(context.Background(), store, strings.NewReader(payload))
	assert.ErrorIs(t, err, storage.ErrValidation)
	assert.Zero(t, n)
}

func TestRecords_ComputesDuration(t *testing.T) {
	store := openTestStore(t)
	seed(t, store)

	records, err := Records(context.Background(), store, fullRange())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.InDelta(t, 300, records[0].DurationSecs, 0.001)
}
