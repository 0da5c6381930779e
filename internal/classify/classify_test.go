package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dwelltrack/lumen/internal/storage"
)

func cat(id, name, wmPattern, titlePattern string) storage.Category {
	return storage.Category{ID: id, Name: name, Color: "#123456", WMClassPattern: wmPattern, TitlePattern: titlePattern}
}

func TestMatch_FirstMatchWins(t *testing.T) {
	rs := NewRuleset([]storage.Category{
		cat("c1", "Editor", "code", ""),
		cat("c2", "Everything", ".*", ""),
	})

	got := rs.Match("code", "main.go")
	assert.Equal(t, "Editor", got.Name)
	assert.Equal(t, "c1", got.CategoryID)
}

func TestMatch_Uncategorized(t *testing.T) {
	rs := NewRuleset([]storage.Category{
		cat("c1", "Editor", "code", ""),
	})

	got := rs.Match("blender", "donut.blend")
	assert.Equal(t, Uncategorized, got)
	assert.Equal(t, UncategorizedColor, got.Color)
	assert.Empty(t, got.CategoryID)
}

func TestMatch_BothPatternsMustMatch(t *testing.T) {
	rs := NewRuleset([]storage.Category{
		cat("c1", "WorkDocs", "firefox", "jira|confluence"),
	})

	assert.Equal(t, "WorkDocs", rs.Match("firefox", "JIRA board").Name)
	assert.Equal(t, Uncategorized, rs.Match("firefox", "Hacker News"))
	assert.Equal(t, Uncategorized, rs.Match("chromium", "jira backlog"))
}

func TestMatch_EmptyPatternsMatchNothing(t *testing.T) {
	rs := NewRuleset([]storage.Category{
		cat("c1", "Blank", "", ""),
		cat("c2", "Editor", "code", ""),
	})

	assert.Equal(t, "Editor", rs.Match("code", "").Name)
	assert.Equal(t, Uncategorized, rs.Match("anything", "at all"))
}

func TestMatch_CaseInsensitiveByDefault(t *testing.T) {
	rs := NewRuleset([]storage.Category{
		cat("c1", "Editor", "code", ""),
	})

	assert.Equal(t, "Editor", rs.Match("Code", "").Name)
	assert.Equal(t, "Editor", rs.Match("VSCODE", "").Name)
}

func TestMatch_CaseSensitiveOptIn(t *testing.T) {
	c := cat("c1", "Editor", "Code", "")
	c.CaseSensitive = true
	rs := NewRuleset([]storage.Category{c})

	assert.Equal(t, "Editor", rs.Match("Code", "").Name)
	assert.Equal(t, Uncategorized, rs.Match("code", ""))
}

func TestMatch_UnanchoredSearch(t *testing.T) {
	rs := NewRuleset([]storage.Category{
		cat("c1", "Browser", "firefox", ""),
	})

	assert.Equal(t, "Browser", rs.Match("org.mozilla.firefox", "").Name)
}

func TestNewRuleset_SkipsBrokenPatterns(t *testing.T) {
	rs := NewRuleset([]storage.Category{
		cat("c1", "Broken", "[unclosed", ""),
		cat("c2", "Editor", "code", ""),
	})

	// The broken category never matches; later categories still do.
	assert.Equal(t, "Editor", rs.Match("code", "").Name)
	assert.Equal(t, Uncategorized, rs.Match("[unclosed", ""))
}

func TestEvent_IdleBypassesPatterns(t *testing.T) {
	rs := NewRuleset([]storage.Category{
		cat("c1", "Everything", ".*", ""),
	})

	e := &storage.Event{WMClass: storage.IdleWMClass, IsIdle: true}
	got := rs.Event(e)
	assert.Equal(t, Idle, got)
	assert.Equal(t, IdleColor, got.Color)
}

func TestEvent_NonIdleUsesPatterns(t *testing.T) {
	rs := NewRuleset([]storage.Category{
		cat("c1", "Editor", "code", ""),
	})

	e := &storage.Event{WMClass: "code", Title: "main.go"}
	assert.Equal(t, "Editor", rs.Event(e).Name)
}
