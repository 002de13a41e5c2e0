package cmd

import (
	"fmt"
	"io"

	"github.com/grovetools/core/cli"
	"github.com/spf13/cobra"
)

type migrateOptions struct {
	file       string
	configFile string
	dryRun     bool
}

// NewRootCmd creates the 'leadmigrate' command.
func NewRootCmd() *cobra.Command {
	opts := &migrateOptions{}

	cmd := cli.NewStandardCommand("leadmigrate", "Migrate mock lead fixtures to the current schema")
	cmd.Long = `Rewrite the mock CRM lead fixture to the current schema.

For every lead record:
- phone is renamed to telephone_no (an existing telephone_no is kept)
- vat_number is added as null when missing

The fixture is only written when at least one field changed. By default the
file is src/data/mockLeads.json, one directory above the executable.`
	cmd.Args = cobra.NoArgs
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	cmd.PersistentFlags().StringVar(&opts.file, "file", "", "Path to the lead fixture (overrides config and default location)")
	cmd.PersistentFlags().StringVar(&opts.configFile, "config-file", "", "Optional YAML or TOML configuration file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Report the changes without writing the file")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd, opts, false)
	}

	cmd.AddCommand(newCheckCmd(opts))
	return cmd
}

// newCheckCmd creates the 'leadmigrate check' command.
func newCheckCmd(opts *migrateOptions) *cobra.Command {
	cmd := cli.NewStandardCommand("check", "Fail if the lead fixture still needs migrating")
	cmd.Long = `Run the migration without writing anything and exit non-zero when
the fixture is not up to date. Intended for CI.`
	cmd.Args = cobra.NoArgs
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd, opts, true)
	}
	return cmd
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

// PrintError writes a command error the way the exit table expects: the bare
// message on its own line.
func PrintError(w io.Writer, err error) {
	render(w, errorStyle, fmt.Sprint(err))
}
