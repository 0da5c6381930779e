package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwelltrack/lumen/internal/storage"
)

func TestCategory_List(t *testing.T) {
	store := openTestStore(t)
	cmd := &CategoryCommand{globals: &GlobalFlags{}, store: store}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	// Seeded defaults show up.
	assert.Contains(t, output, "Browser")
	assert.Contains(t, output, "Editor")
	assert.Contains(t, output, "100")
}

func TestCategory_Add(t *testing.T) {
	store := openTestStore(t)
	cmd := &CategoryCommand{
		Add:     "Deep Work",
		Pattern: "code|neovim",
		Color:   "#ff0000",
		Goal:    "2h",
		globals: &GlobalFlags{},
		store:   store,
	}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})
	assert.Contains(t, output, "Saved category Deep Work")

	cats, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 8)
	assert.Equal(t, "Deep Work", cats[0].Name, "user category outranks defaults")
	assert.Equal(t, int64(7200), cats[0].DailyGoalSecs)
	assert.Equal(t, "#ff0000", cats[0].Color)
}

func TestCategory_AddBadPattern(t *testing.T) {
	store := openTestStore(t)
	cmd := &CategoryCommand{Add: "Broken", Pattern: "[unclosed", globals: &GlobalFlags{}, store: store}

	err := cmd.Execute(nil)
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestCategory_Remove(t *testing.T) {
	store := openTestStore(t)
	c := &storage.Category{Name: "Temp", WMClassPattern: "temp"}
	require.NoError(t, store.UpsertCategory(context.Background(), c))

	cmd := &CategoryCommand{Remove: c.ID, globals: &GlobalFlags{}, store: store}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})
	assert.Contains(t, output, "Removed category")

	cmd = &CategoryCommand{Remove: c.ID, globals: &GlobalFlags{}, store: store}
	assert.ErrorIs(t, cmd.Execute(nil), storage.ErrNotFound)
}
