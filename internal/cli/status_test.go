package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_EmptyDB(t *testing.T) {
	store := openTestStore(t)
	cmd := &StatusCommand{globals: &GlobalFlags{}, version: "dev", store: store}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "lumen status")
	assert.Contains(t, output, "Version:   dev")
	assert.Contains(t, output, "Events:    0")
}

func TestStatus_WithEvents(t *testing.T) {
	store := openTestStore(t)
	seedTestEvent(t, store, "e1", "code", testTime, testTime.Add(5*time.Minute))
	seedTestEvent(t, store, "e2", "firefox", testTime.Add(5*time.Minute), testTime.Add(10*time.Minute))

	cmd := &StatusCommand{globals: &GlobalFlags{}, version: "dev", store: store}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "Events:    2")
	assert.Contains(t, output, "dev1")
	assert.Contains(t, output, "Top apps:")
	assert.Contains(t, output, "code")
}

func TestStatus_JSONOutput(t *testing.T) {
	store := openTestStore(t)
	seedTestEvent(t, store, "e1", "code", testTime, testTime.Add(5*time.Minute))

	cmd := &StatusCommand{globals: &GlobalFlags{JSON: true}, version: "1.0.0", store: store}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	var out statusJSON
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, "1.0.0", out.Version)
	assert.Equal(t, int64(1), out.TotalEvents)
	assert.Equal(t, []string{"dev1"}, out.Devices)
	require.Len(t, out.TopApps, 1)
	assert.Equal(t, "code", out.TopApps[0].WMClass)
}
