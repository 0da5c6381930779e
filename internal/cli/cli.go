package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Track    *TrackCommand
	Status   *StatusCommand
	Report   *ReportCommand
	Category *CategoryCommand
	Rule     *RuleCommand
	Export   *ExportCommand
	Import   *ImportCommand
	Sync     *SyncCommand
	Prune    *PruneCommand
	Purge    *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "lumen"
	parser.LongDescription = "Local activity tracker: records foreground-window dwell time and serves categorized usage reports."

	cmds := &commands{
		Track:    &TrackCommand{globals: &globals, version: version},
		Status:   &StatusCommand{globals: &globals, version: version},
		Report:   &ReportCommand{globals: &globals, version: version},
		Category: &CategoryCommand{globals: &globals, version: version},
		Rule:     &RuleCommand{globals: &globals, version: version},
		Export:   &ExportCommand{globals: &globals, version: version},
		Import:   &ImportCommand{globals: &globals, version: version},
		Sync:     &SyncCommand{globals: &globals, version: version},
		Prune:    &PruneCommand{globals: &globals, version: version},
		Purge:    &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("track", "Run the tracking daemon", "Run the poll loop and local HTTP API until interrupted.", cmds.Track)
	parser.AddCommand("status", "Show tracker statistics", "Show database statistics, devices seen, and daemon health.", cmds.Status)
	parser.AddCommand("report", "Print an aggregated view", "Print a summary, timeline, history, metrics or goals view.", cmds.Report)
	parser.AddCommand("category", "Manage classification categories", "List, add or remove the regex categories used to classify events.", cmds.Category)
	parser.AddCommand("rule", "Manage privacy rules", "List, add or remove ignore/redact privacy rules.", cmds.Rule)
	parser.AddCommand("export", "Export stored events", "Write stored events as JSON or CSV.", cmds.Export)
	parser.AddCommand("import", "Import a JSON export", "Load events from a JSON export; re-import never duplicates.", cmds.Import)
	parser.AddCommand("sync", "Pull events from a peer", "Fetch a peer device's events and merge them into the local store.", cmds.Sync)
	parser.AddCommand("prune", "Apply retention pruning", "Delete events older than the retention period.", cmds.Prune)
	parser.AddCommand("purge", "Delete ALL stored events", "Delete ALL stored events. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the lumen CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("lumen %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
