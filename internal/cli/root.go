package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. It is
// called by the main package with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the winnow CLI and returns an error if any command
// fails. Logging defaults to info level on stderr; --verbose (-v)
// raises it to debug. The logger is attached to the command context and
// retrieved by subcommands via loggerFromContext.
func Execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          "winnow",
		Short:        "Winnow prunes impossible regions from scenario sample spaces",
		Long:         `Winnow statically analyzes a scenario description and shrinks each object's placement region to the subset that can actually satisfy the scenario's containment, heading, and visibility requirements, so that downstream rejection sampling wastes fewer draws.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("winnow %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newPruneCmd())

	return root.ExecuteContext(context.Background())
}
