package storage

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// Default priority for user-created categories. Seeded defaults use
// 100 so user rules always match first.
const defaultCategoryPriority = 10

// validateCategory checks a category before persisting. Bad regex
// patterns are rejected here so the classifier never sees them from
// this store's own writes; patterns edited out-of-band are skipped
// at compile time instead.
func validateCategory(c *Category) error {
	if c.Name == "" {
		return fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if c.WMClassPattern != "" {
		if _, err := regexp.Compile(c.WMClassPattern); err != nil {
			return fmt.Errorf("%w: wm_class_pattern: %v", ErrValidation, err)
		}
	}
	if c.TitlePattern != "" {
		if _, err := regexp.Compile(c.TitlePattern); err != nil {
			return fmt.Errorf("%w: title_pattern: %v", ErrValidation, err)
		}
	}
	return nil
}

// ListCategories returns all categories ordered by priority, then name.
// This is the classifier's evaluation order.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, color, wm_class_pattern, title_pattern,
		       is_case_sensitive, priority, daily_goal_secs, daily_limit_secs
		FROM categories
		ORDER BY priority ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list categories: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	cats := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.WMClassPattern, &c.TitlePattern,
			&c.CaseSensitive, &c.Priority, &c.DailyGoalSecs, &c.DailyLimitSecs); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}

	return cats, rows.Err()
}

// UpsertCategory inserts or replaces a category. A missing ID is
// generated; a missing color gets a default. Priority 0 is reserved
// as "unset" and is rewritten to the user default; to outrank every
// other category use a negative priority.
func (s *Store) UpsertCategory(ctx context.Context, c *Category) error {
	if err := validateCategory(c); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Color == "" {
		c.Color = "#3b82f6"
	}
	if c.Priority == 0 {
		c.Priority = defaultCategoryPriority
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO categories
			(id, name, color, wm_class_pattern, title_pattern, is_case_sensitive,
			 priority, daily_goal_secs, daily_limit_secs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Color, c.WMClassPattern, c.TitlePattern, c.CaseSensitive,
		c.Priority, c.DailyGoalSecs, c.DailyLimitSecs)
	if err != nil {
		return fmt.Errorf("%w: upsert category: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// DeleteCategory removes a category by id. History reclassifies on the
// next query; no event rows are touched.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: delete category: %v", ErrStorageUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	return nil
}
