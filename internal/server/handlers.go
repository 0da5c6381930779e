package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dwelltrack/lumen/internal/aggregate"
	"github.com/dwelltrack/lumen/internal/export"
	"github.com/dwelltrack/lumen/internal/logger"
	"github.com/dwelltrack/lumen/internal/storage"
	"github.com/dwelltrack/lumen/internal/tracker"
)

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps core errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrInvalidRange), errors.Is(err, storage.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// parseRange extracts the query range from request parameters:
// either date=YYYY-MM-DD (a single local day, today when absent) or
// explicit start/end RFC3339 stamps, plus repeatable device filters.
func parseRange(r *http.Request) (storage.RangeQuery, error) {
	q := storage.RangeQuery{Devices: r.URL.Query()["device"]}

	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr != "" || endStr != "" {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return q, errors.Join(storage.ErrInvalidRange, err)
		}
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return q, errors.Join(storage.ErrInvalidRange, err)
		}
		q.Start, q.End = start, end
		return q, nil
	}

	day := time.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			return q, errors.Join(storage.ErrInvalidRange, err)
		}
		day = parsed
	}
	q.Start, q.End = aggregate.DayRange(day)
	return q, nil
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "running",
		"version":      s.version,
		"timestamp":    time.Now().Format(time.RFC3339),
		"total_events": stats.TotalEvents,
		"devices":      stats.Devices,
	})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	q, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.agg.Summary(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"start": q.Start, "end": q.End, "summary": rows})
}

func (s *Server) timeline(w http.ResponseWriter, r *http.Request) {
	q, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	blocks, err := s.agg.Timeline(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"start": q.Start, "end": q.End, "timeline": blocks})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	days := 7
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed <= 0 {
			writeError(w, r, errors.Join(storage.ErrInvalidRange, errors.New("days must be a positive integer")))
			return
		}
		days = parsed
	}

	_, end := aggregate.DayRange(time.Now())
	start := end.AddDate(0, 0, -days)
	q := storage.RangeQuery{Devices: r.URL.Query()["device"], Start: start, End: end}

	rows, err := s.agg.History(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days, "history": rows})
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	q, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.agg.Metrics(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) goals(w http.ResponseWriter, r *http.Request) {
	q, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.agg.Goals(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": rows})
}

// liveSegment is the wire form of an open segment. Open segments are
// invisible to every other query.
type liveSegment struct {
	DeviceID   string    `json:"device_id"`
	WMClass    string    `json:"wm_class"`
	Title      string    `json:"title"`
	IsIdle     bool      `json:"is_idle"`
	Start      time.Time `json:"start"`
	LastSample time.Time `json:"last_sample"`
}

func (s *Server) live(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no tracking loop running"})
		return
	}
	open := s.recorder.Live()
	out := make([]liveSegment, len(open))
	for i, o := range open {
		out[i] = liveSegment{
			DeviceID:   o.DeviceID,
			WMClass:    o.WMClass,
			Title:      o.Title,
			IsIdle:     o.IsIdle,
			Start:      o.Start,
			LastSample: o.LastSample,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"live": out})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	q, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatJSON
	}

	switch format {
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
	}
	if err := export.Write(r.Context(), s.store, q, format, w); err != nil {
		writeError(w, r, err)
	}
}

// samplePayload is one poll observation submitted by an external
// poller.
type samplePayload struct {
	DeviceID  string    `json:"device_id"`
	WMClass   string    `json:"wm_class"`
	Title     string    `json:"title"`
	IsIdle    bool      `json:"is_idle"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) ingestSample(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no tracking loop running"})
		return
	}

	var p samplePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if p.DeviceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "device_id is required"})
		return
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}

	err := s.recorder.Submit(r.Context(), tracker.Sample{
		DeviceID: p.DeviceID,
		WMClass:  p.WMClass,
		Title:    p.Title,
		IsIdle:   p.IsIdle,
		Time:     p.Timestamp,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// categoryPayload is the wire form of a category.
type categoryPayload struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Color          string `json:"color,omitempty"`
	WMClassPattern string `json:"wm_class_pattern,omitempty"`
	TitlePattern   string `json:"title_pattern,omitempty"`
	CaseSensitive  bool   `json:"is_case_sensitive,omitempty"`
	Priority       int    `json:"priority,omitempty"`
	DailyGoalSecs  int64  `json:"daily_goal_secs,omitempty"`
	DailyLimitSecs int64  `json:"daily_limit_secs,omitempty"`
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryPayload, len(cats))
	for i, c := range cats {
		out[i] = categoryPayload{
			ID: c.ID, Name: c.Name, Color: c.Color,
			WMClassPattern: c.WMClassPattern, TitlePattern: c.TitlePattern,
			CaseSensitive: c.CaseSensitive, Priority: c.Priority,
			DailyGoalSecs: c.DailyGoalSecs, DailyLimitSecs: c.DailyLimitSecs,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (s *Server) upsertCategory(w http.ResponseWriter, r *http.Request) {
	var p categoryPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	cat := storage.Category{
		ID: p.ID, Name: p.Name, Color: p.Color,
		WMClassPattern: p.WMClassPattern, TitlePattern: p.TitlePattern,
		CaseSensitive: p.CaseSensitive, Priority: p.Priority,
		DailyGoalSecs: p.DailyGoalSecs, DailyLimitSecs: p.DailyLimitSecs,
	}
	if err := s.store.UpsertCategory(r.Context(), &cat); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": cat.ID})
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// rulePayload is the wire form of a privacy rule.
type rulePayload struct {
	ID             string `json:"id,omitempty"`
	RuleType       string `json:"rule_type"`
	WMClassPattern string `json:"wm_class_pattern,omitempty"`
	TitlePattern   string `json:"title_pattern,omitempty"`
}

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.ListRules(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]rulePayload, len(rules))
	for i, rule := range rules {
		out[i] = rulePayload{
			ID: rule.ID, RuleType: rule.RuleType,
			WMClassPattern: rule.WMClassPattern, TitlePattern: rule.TitlePattern,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": out})
}

func (s *Server) upsertRule(w http.ResponseWriter, r *http.Request) {
	var p rulePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	rule := storage.PrivacyRule{
		ID: p.ID, RuleType: p.RuleType,
		WMClassPattern: p.WMClassPattern, TitlePattern: p.TitlePattern,
	}
	if err := s.store.UpsertRule(r.Context(), &rule); err != nil {
		writeError(w, r, err)
		return
	}

	// The live tracking loop must pick up rule edits immediately.
	if s.recorder != nil {
		if rules, err := s.store.ListRules(r.Context()); err == nil {
			s.recorder.SetFilter(tracker.NewFilter(rules))
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": rule.ID})
}

func (s *Server) deleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	if s.recorder != nil {
		if rules, err := s.store.ListRules(r.Context()); err == nil {
			s.recorder.SetFilter(tracker.NewFilter(rules))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
