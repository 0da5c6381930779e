package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"30d", 30 * 24 * time.Hour},
		{"24h", 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"90m", 90 * time.Minute},
		{"0d", 0},
	}
	for _, tc := range cases {
		got, err := parseDuration(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, in := range []string{"", "d", "30", "thirty days", "30x"} {
		_, err := parseDuration(in)
		assert.Error(t, err, in)
	}
}

func TestFormatSecs(t *testing.T) {
	assert.Equal(t, "2h 5m", formatSecs(2*3600+5*60))
	assert.Equal(t, "45m", formatSecs(45*60))
	assert.Equal(t, "59s", formatSecs(59))
	assert.Equal(t, "0s", formatSecs(0))
}

func TestFormatDurationHuman(t *testing.T) {
	assert.Equal(t, "90 days", formatDurationHuman(90*24*time.Hour))
	assert.Equal(t, "1 day", formatDurationHuman(24*time.Hour))
	assert.Equal(t, "6 hours", formatDurationHuman(6*time.Hour))
	assert.Equal(t, "1 hour", formatDurationHuman(time.Hour))
}

func TestReportRange(t *testing.T) {
	q, err := reportRange("2026-01-02", []string{"dev1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dev1"}, q.Devices)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.Local), q.Start)
	assert.Equal(t, time.Date(2026, 1, 3, 0, 0, 0, 0, time.Local), q.End)

	_, err = reportRange("02/01/2026", nil)
	assert.ErrorContains(t, err, "invalid date")

	q, err = reportRange("", nil)
	require.NoError(t, err)
	assert.True(t, q.End.After(q.Start))
}
