package tracker

import (
	"regexp"

	"github.com/dwelltrack/lumen/internal/storage"
)

// RedactedTitle replaces window titles matched by a redact rule.
// Redaction happens at persistence time and is permanent.
const RedactedTitle = "[redacted]"

type compiledRule struct {
	ruleType string
	wmClass  *regexp.Regexp
	title    *regexp.Regexp
}

// Filter is a compiled set of privacy rules. Compile once per rule
// load; rebuild after rule edits. Matching is case-insensitive search,
// and a rule applies when every non-empty pattern matches. Rules with
// invalid patterns are skipped.
type Filter struct {
	rules []compiledRule
}

// NewFilter compiles the given privacy rules.
func NewFilter(rules []storage.PrivacyRule) *Filter {
	f := &Filter{}
	for _, r := range rules {
		cr := compiledRule{ruleType: r.RuleType}
		ok := true
		if r.WMClassPattern != "" {
			re, err := regexp.Compile("(?i)" + r.WMClassPattern)
			if err != nil {
				ok = false
			}
			cr.wmClass = re
		}
		if r.TitlePattern != "" {
			re, err := regexp.Compile("(?i)" + r.TitlePattern)
			if err != nil {
				ok = false
			}
			cr.title = re
		}
		if !ok || (cr.wmClass == nil && cr.title == nil) {
			continue
		}
		f.rules = append(f.rules, cr)
	}
	return f
}

func (cr *compiledRule) matches(wmClass, title string) bool {
	if cr.wmClass != nil && !cr.wmClass.MatchString(wmClass) {
		return false
	}
	if cr.title != nil && !cr.title.MatchString(title) {
		return false
	}
	return true
}

// Ignore reports whether a sample must be dropped before it reaches
// the segmenter, as if it never occurred.
func (f *Filter) Ignore(wmClass, title string) bool {
	return f.match(storage.RuleIgnore, wmClass, title)
}

// Redact reports whether a segment's title must be scrubbed when it is
// persisted.
func (f *Filter) Redact(wmClass, title string) bool {
	return f.match(storage.RuleRedact, wmClass, title)
}

func (f *Filter) match(ruleType, wmClass, title string) bool {
	for i := range f.rules {
		if f.rules[i].ruleType != ruleType {
			continue
		}
		if f.rules[i].matches(wmClass, title) {
			return true
		}
	}
	return false
}
