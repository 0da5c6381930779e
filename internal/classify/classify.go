// Package classify maps (wm_class, title) pairs to categories using
// priority-ordered regex rules. Classification is computed at query
// time and never persisted, so category edits retroactively
// reclassify stored history.
package classify

import (
	"regexp"

	"github.com/dwelltrack/lumen/internal/storage"
)

// Reserved labels. Neither is a stored category.
const (
	UncategorizedName  = "Uncategorized"
	UncategorizedColor = "#64748b"
	IdleName           = "Idle"
	IdleColor          = "#94a3b8"
)

// Label is the classification result attached to an event.
type Label struct {
	CategoryID string // empty for reserved labels
	Name       string
	Color      string
}

// Uncategorized is the fallback label for events no category matches.
var Uncategorized = Label{Name: UncategorizedName, Color: UncategorizedColor}

// Idle is the reserved label for idle events. User patterns are never
// evaluated against idle segments.
var Idle = Label{Name: IdleName, Color: IdleColor}

// compiledCategory pairs a category with its compiled matchers. A nil
// matcher for a non-empty pattern marks the pattern as broken: it
// never matches but also never aborts classification.
type compiledCategory struct {
	cat     storage.Category
	wmClass *regexp.Regexp
	title   *regexp.Regexp
	broken  bool
}

// Ruleset is an ordered, compiled set of categories. Compile once per
// category-list load and reuse across events; rebuild after category
// edits. Evaluation order is the order of the input slice, which
// ListCategories returns sorted by (priority asc, name asc). First
// match wins.
type Ruleset struct {
	compiled []compiledCategory
}

// NewRuleset compiles the given categories. Invalid patterns are
// recorded as broken rather than returned as errors: one bad pattern
// must not break classification of the whole batch. Pattern validity
// is surfaced to the user at category create/edit time, not here.
func NewRuleset(cats []storage.Category) *Ruleset {
	rs := &Ruleset{compiled: make([]compiledCategory, 0, len(cats))}
	for _, c := range cats {
		cc := compiledCategory{cat: c}
		if c.WMClassPattern != "" {
			re, err := compilePattern(c.WMClassPattern, c.CaseSensitive)
			if err != nil {
				cc.broken = true
			}
			cc.wmClass = re
		}
		if c.TitlePattern != "" {
			re, err := compilePattern(c.TitlePattern, c.CaseSensitive)
			if err != nil {
				cc.broken = true
			}
			cc.title = re
		}
		rs.compiled = append(rs.compiled, cc)
	}
	return rs
}

// compilePattern compiles a search (unanchored) pattern, prefixing the
// case-insensitivity flag unless the category asks for case-sensitive
// matching.
func compilePattern(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

// Match returns the label for a (wm_class, title) pair. A category is
// eligible when every non-empty pattern matches and at least one
// pattern is non-empty; a category with both patterns empty matches
// nothing.
func (rs *Ruleset) Match(wmClass, title string) Label {
	for _, cc := range rs.compiled {
		if cc.broken {
			continue
		}
		if cc.wmClass == nil && cc.title == nil {
			continue
		}
		if cc.wmClass != nil && !cc.wmClass.MatchString(wmClass) {
			continue
		}
		if cc.title != nil && !cc.title.MatchString(title) {
			continue
		}
		return Label{CategoryID: cc.cat.ID, Name: cc.cat.Name, Color: cc.cat.Color}
	}
	return Uncategorized
}

// Event labels a stored event. Idle events always classify as the
// reserved Idle label, bypassing user patterns.
func (rs *Ruleset) Event(e *storage.Event) Label {
	if e.IsIdle {
		return Idle
	}
	return rs.Match(e.WMClass, e.Title)
}
