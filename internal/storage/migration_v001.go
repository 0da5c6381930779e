package storage

import (
	"database/sql"

	"github.com/google/uuid"
)

// migrateV001 creates the initial lumen schema: events, categories and
// privacy rules, plus the default category set. Every statement uses
// IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id        TEXT PRIMARY KEY NOT NULL,
			device_id TEXT NOT NULL,
			start_ts  TEXT NOT NULL,
			end_ts    TEXT NOT NULL,
			wm_class  TEXT NOT NULL,
			title     TEXT NOT NULL DEFAULT '',
			is_idle   BOOLEAN NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id                TEXT PRIMARY KEY NOT NULL,
			name              TEXT NOT NULL,
			color             TEXT NOT NULL DEFAULT '#3b82f6',
			wm_class_pattern  TEXT NOT NULL DEFAULT '',
			title_pattern     TEXT NOT NULL DEFAULT '',
			is_case_sensitive BOOLEAN NOT NULL DEFAULT 0,
			priority          INTEGER NOT NULL DEFAULT 10,
			daily_goal_secs   INTEGER NOT NULL DEFAULT 0,
			daily_limit_secs  INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS privacy_rules (
			id               TEXT PRIMARY KEY NOT NULL,
			rule_type        TEXT NOT NULL CHECK (rule_type IN ('ignore', 'redact')),
			wm_class_pattern TEXT NOT NULL DEFAULT '',
			title_pattern    TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_device_start ON events(device_id, start_ts)`,
		`CREATE INDEX IF NOT EXISTS idx_events_start        ON events(start_ts)`,
		`CREATE INDEX IF NOT EXISTS idx_events_wm_class     ON events(wm_class)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return seedDefaultCategories(tx)
}

// seedDefaultCategories inserts the stock category set when the table
// is empty. Defaults sit at priority 100 so user-created categories
// (default priority 10) always win over them.
func seedDefaultCategories(tx *sql.Tx) error {
	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	type cat struct {
		Name    string
		Pattern string
		Color   string
	}

	defaults := []cat{
		{"Browser", "firefox|chromium|google-chrome|brave|zen", "#3b82f6"},
		{"Terminal", "gnome-terminal|kitty|alacritty|wezterm|foot|Tilix|konsole", "#10b981"},
		{"Editor", "code|Code|cursor|Cursor|neovim|emacs|sublime|jetbrains", "#8b5cf6"},
		{"Communication", "slack|discord|telegram|signal|teams|zoom", "#f59e0b"},
		{"Files", "nautilus|thunar|dolphin|nemo", "#6366f1"},
		{"Media", "vlc|mpv|spotify|rhythmbox|totem", "#ec4899"},
		{"Office", "libreoffice|soffice|evince|okular", "#14b8a6"},
	}

	const insertSQL = `INSERT INTO categories (id, name, wm_class_pattern, color, priority) VALUES (?, ?, ?, ?, 100)`

	for _, c := range defaults {
		if _, err := tx.Exec(insertSQL, uuid.NewString(), c.Name, c.Pattern, c.Color); err != nil {
			return err
		}
	}

	return nil
}
