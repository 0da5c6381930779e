package cli

import "github.com/dwelltrack/lumen/internal/storage"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// TrackCommand runs the tracking daemon: poll loop + HTTP API.
type TrackCommand struct {
	Port     int    `long:"port" description:"Override HTTP API port"`
	LogLevel string `long:"log-level" description:"Override log level"`
	NoServer bool   `long:"no-server" description:"Run the poll loop without the HTTP API"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows database statistics and daemon health.
type StatusCommand struct {
	globals *GlobalFlags
	version string

	store *storage.Store // injectable for testing
}

// ReportCommand prints an aggregated view for a date or range.
type ReportCommand struct {
	View   string   `long:"view" description:"View to render: summary | timeline | history | metrics | goals" default:"summary"`
	Date   string   `long:"date" description:"Day to report on (YYYY-MM-DD, default today)"`
	Days   int      `long:"days" description:"Window for the history view" default:"7"`
	Device []string `long:"device" description:"Filter by device id (repeatable)"`

	globals *GlobalFlags
	version string

	store *storage.Store
}

// CategoryCommand lists, adds or removes classification categories.
type CategoryCommand struct {
	Add      string `long:"add" description:"Add a category with this name"`
	Pattern  string `long:"pattern" description:"wm_class regex for --add"`
	Title    string `long:"title-pattern" description:"Window title regex for --add"`
	Color    string `long:"color" description:"Display color for --add (hex)"`
	Priority int    `long:"priority" description:"Match priority for --add (lower wins)"`
	Goal     string `long:"goal" description:"Daily goal for --add (e.g. 2h, 90m)"`
	Limit    string `long:"limit" description:"Daily limit for --add (e.g. 1h)"`
	Remove   string `long:"rm" description:"Remove the category with this id"`

	globals *GlobalFlags
	version string

	store *storage.Store
}

// RuleCommand lists, adds or removes privacy rules.
type RuleCommand struct {
	Add     string `long:"add" description:"Add a rule of this type: ignore | redact"`
	Pattern string `long:"pattern" description:"wm_class regex for --add"`
	Title   string `long:"title-pattern" description:"Window title regex for --add"`
	Remove  string `long:"rm" description:"Remove the rule with this id"`
	Init    bool   `long:"init" description:"Install the curated default privacy rules"`

	globals *GlobalFlags
	version string

	store *storage.Store
}

// ExportCommand writes stored events to a file or stdout.
type ExportCommand struct {
	Since  string   `long:"since" description:"Only events newer than duration (e.g. 7d, 24h)" default:"30d"`
	Format string   `long:"format" description:"Output format: json | csv" default:"json"`
	Output string   `long:"output" short:"o" description:"Output file (default stdout)"`
	Device []string `long:"device" description:"Filter by device id (repeatable)"`

	globals *GlobalFlags
	version string

	store *storage.Store
}

// ImportCommand loads a JSON export into the local store.
type ImportCommand struct {
	File string `long:"file" short:"f" description:"Export file to import (required)"`

	globals *GlobalFlags
	version string

	store *storage.Store
}

// SyncCommand pulls events from a peer device's API.
type SyncCommand struct {
	Peer  string `long:"peer" description:"Peer base URL, e.g. http://desktop.local:8932 (required)"`
	Since string `long:"since" description:"Only events newer than duration" default:"30d"`

	globals *GlobalFlags
	version string

	store *storage.Store
}

// PruneCommand applies retention pruning to remove old events.
type PruneCommand struct {
	OlderThan string `long:"older-than" description:"Override retention period (e.g. 90d)"`
	DryRun    bool   `long:"dry-run" description:"Show what would be pruned without deleting"`

	globals *GlobalFlags
	version string

	store *storage.Store
}

// PurgeCommand deletes ALL stored events with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string

	store *storage.Store
}
