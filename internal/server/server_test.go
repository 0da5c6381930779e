package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwelltrack/lumen/internal/storage"
	"github.com/dwelltrack/lumen/internal/tracker"
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

func newTestServer(t *testing.T, rec *tracker.Recorder) (*Server, *storage.Store) {
	t.Helper()
	store := openTestStore(t)
	return New(store, rec, nil, "test"), store
}

func seedEvent(t *testing.T, store *storage.Store, id, app string, start, end time.Time) {
	t.Helper()
	require.NoError(t, store.UpsertEvent(context.Background(), &storage.Event{
		ID: id, DeviceID: "dev1", StartTime: start, EndTime: end, WMClass: app,
	}))
}

func doRequest(t *testing.T, srv *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func rangeParams(start, end time.Time) string {
	return fmt.Sprintf("start=%s&end=%s",
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
}

func TestStatusEndpoint(t *testing.T) {
	srv, store := newTestServer(t, nil)
	seedEvent(t, store, "e1", "code", t0, t0.Add(time.Minute))

	w := doRequest(t, srv, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.EqualValues(t, 1, body["total_events"])
}

func TestSummaryEndpoint(t *testing.T) {
	srv, store := newTestServer(t, nil)
	seedEvent(t, store, "e1", "code", t0, t0.Add(30*time.Minute))

	target := "/api/summary?" + rangeParams(t0.Add(-time.Hour), t0.Add(time.Hour))
	w := doRequest(t, srv, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	rows := body["summary"].([]any)
	require.Len(t, rows, 1)
	first := rows[0].(map[string]any)
	assert.Equal(t, "code", first["wm_class"])
	assert.EqualValues(t, 1800, first["total_secs"])
	assert.Equal(t, "Editor", first["category"])
}

func TestSummaryEndpoint_BadRange(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doRequest(t, srv, http.MethodGet, "/api/summary?start=notatime&end=alsonot", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaryEndpoint_InvertedRange(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	target := "/api/summary?" + rangeParams(t0.Add(time.Hour), t0)
	w := doRequest(t, srv, http.MethodGet, target, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimelineEndpoint(t *testing.T) {
	srv, store := newTestServer(t, nil)
	seedEvent(t, store, "e1", "code", t0, t0.Add(10*time.Minute))
	seedEvent(t, store, "e2", "slack", t0.Add(10*time.Minute), t0.Add(20*time.Minute))

	target := "/api/timeline?" + rangeParams(t0.Add(-time.Hour), t0.Add(time.Hour))
	w := doRequest(t, srv, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	blocks := body["timeline"].([]any)
	assert.Len(t, blocks, 2)
}

func TestHistoryEndpoint_RejectsBadDays(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doRequest(t, srv, http.MethodGet, "/api/history?days=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, srv, http.MethodGet, "/api/history?days=-3", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, store := newTestServer(t, nil)
	seedEvent(t, store, "e1", "code", t0, t0.Add(time.Hour))

	target := "/api/metrics?" + rangeParams(t0.Add(-time.Hour), t0.Add(2*time.Hour))
	w := doRequest(t, srv, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 0, body["context_switches"])
	assert.EqualValues(t, 100, body["focus_score"])
}

func TestLiveEndpoint_NoRecorder(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doRequest(t, srv, http.MethodGet, "/api/live", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestIngestAndLive(t *testing.T) {
	store := openTestStore(t)
	rec := tracker.NewRecorder(store, nil, tracker.DefaultConfig(), nil)
	srv := New(store, rec, nil, "test")

	payload := fmt.Sprintf(`{"device_id":"dev1","wm_class":"code","title":"main.go","timestamp":%q}`,
		t0.Format(time.RFC3339))
	w := doRequest(t, srv, http.MethodPost, "/api/events", []byte(payload))
	require.Equal(t, http.StatusAccepted, w.Code)

	w = doRequest(t, srv, http.MethodGet, "/api/live", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	live := body["live"].([]any)
	require.Len(t, live, 1)
	seg := live[0].(map[string]any)
	assert.Equal(t, "dev1", seg["device_id"])
	assert.Equal(t, "code", seg["wm_class"])
}

func TestIngest_RequiresDeviceID(t *testing.T) {
	store := openTestStore(t)
	rec := tracker.NewRecorder(store, nil, tracker.DefaultConfig(), nil)
	srv := New(store, rec, nil, "test")

	w := doRequest(t, srv, http.MethodPost, "/api/events", []byte(`{"wm_class":"code"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngest_NoRecorder(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doRequest(t, srv, http.MethodPost, "/api/events", []byte(`{"device_id":"dev1"}`))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCategoriesEndpoint_CRUD(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	// Create
	w := doRequest(t, srv, http.MethodPost, "/api/categories",
		[]byte(`{"name":"Work","wm_class_pattern":"code|slack"}`))
	require.Equal(t, http.StatusOK, w.Code)
	id := decodeBody(t, w)["id"].(string)
	require.NotEmpty(t, id)

	// List includes it plus the seeded defaults.
	w = doRequest(t, srv, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cats := decodeBody(t, w)["categories"].([]any)
	assert.Len(t, cats, 8)

	// Delete
	w = doRequest(t, srv, http.MethodDelete, "/api/categories/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, srv, http.MethodDelete, "/api/categories/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoriesEndpoint_RejectsBadRegex(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doRequest(t, srv, http.MethodPost, "/api/categories",
		[]byte(`{"name":"Broken","wm_class_pattern":"[unclosed"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRulesEndpoint_UpdatesRecorderFilter(t *testing.T) {
	store := openTestStore(t)
	rec := tracker.NewRecorder(store, nil, tracker.DefaultConfig(), nil)
	srv := New(store, rec, nil, "test")

	w := doRequest(t, srv, http.MethodPost, "/api/rules",
		[]byte(`{"rule_type":"ignore","wm_class_pattern":"keepassxc"}`))
	require.Equal(t, http.StatusOK, w.Code)

	// The recorder's filter now drops matching samples.
	require.NoError(t, rec.Submit(context.Background(), tracker.Sample{
		DeviceID: "dev1", WMClass: "keepassxc", Time: t0,
	}))
	assert.Empty(t, rec.Live(), "ignored sample must not open a segment")
}

func TestRulesEndpoint_Validation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doRequest(t, srv, http.MethodPost, "/api/rules",
		[]byte(`{"rule_type":"blocklist","wm_class_pattern":"x"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportEndpoint(t *testing.T) {
	srv, store := newTestServer(t, nil)
	seedEvent(t, store, "e1", "code", t0, t0.Add(time.Minute))

	target := "/api/export?" + rangeParams(t0.Add(-time.Hour), t0.Add(time.Hour))
	w := doRequest(t, srv, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "e1", records[0]["id"])
}

func TestExportEndpoint_CSV(t *testing.T) {
	srv, store := newTestServer(t, nil)
	seedEvent(t, store, "e1", "code", t0, t0.Add(time.Minute))

	target := "/api/export?format=csv&" + rangeParams(t0.Add(-time.Hour), t0.Add(time.Hour))
	w := doRequest(t, srv, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "wm_class")
}
