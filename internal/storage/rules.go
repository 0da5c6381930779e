package storage

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

func validateRule(r *PrivacyRule) error {
	if r.RuleType != RuleIgnore && r.RuleType != RuleRedact {
		return fmt.Errorf("%w: rule_type must be %q or %q", ErrValidation, RuleIgnore, RuleRedact)
	}
	if r.WMClassPattern == "" && r.TitlePattern == "" {
		return fmt.Errorf("%w: at least one pattern is required", ErrValidation)
	}
	if r.WMClassPattern != "" {
		if _, err := regexp.Compile(r.WMClassPattern); err != nil {
			return fmt.Errorf("%w: wm_class_pattern: %v", ErrValidation, err)
		}
	}
	if r.TitlePattern != "" {
		if _, err := regexp.Compile(r.TitlePattern); err != nil {
			return fmt.Errorf("%w: title_pattern: %v", ErrValidation, err)
		}
	}
	return nil
}

// ListRules returns all privacy rules.
func (s *Store) ListRules(ctx context.Context) ([]PrivacyRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rule_type, wm_class_pattern, title_pattern
		FROM privacy_rules
		ORDER BY rule_type ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list rules: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	rules := []PrivacyRule{}
	for rows.Next() {
		var r PrivacyRule
		if err := rows.Scan(&r.ID, &r.RuleType, &r.WMClassPattern, &r.TitlePattern); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}

	return rules, rows.Err()
}

// UpsertRule inserts or replaces a privacy rule, generating an ID when
// absent.
func (s *Store) UpsertRule(ctx context.Context, r *PrivacyRule) error {
	if err := validateRule(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO privacy_rules (id, rule_type, wm_class_pattern, title_pattern)
		VALUES (?, ?, ?, ?)
	`, r.ID, r.RuleType, r.WMClassPattern, r.TitlePattern)
	if err != nil {
		return fmt.Errorf("%w: upsert rule: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// DeleteRule removes a privacy rule by id.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM privacy_rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: delete rule: %v", ErrStorageUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: privacy rule %s", ErrNotFound, id)
	}
	return nil
}
