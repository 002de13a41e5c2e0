package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/grovetools/core/cli"
	"github.com/grovetools/leadmigrate/pkg/config"
	"github.com/grovetools/leadmigrate/pkg/fixture"
	"github.com/grovetools/leadmigrate/pkg/leads"
	"github.com/spf13/cobra"
)

func runMigrate(cmd *cobra.Command, opts *migrateOptions, check bool) error {
	var cfg *config.Config
	if opts.configFile != "" {
		loaded, err := config.Load(opts.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	path, err := resolveFixturePath(opts.file, cfg)
	if err != nil {
		return err
	}

	rules, err := cfg.Rules()
	if err != nil {
		return err
	}

	svc := fixture.NewService(
		fixture.WithDryRun(opts.dryRun || check),
		fixture.WithAtomicWrite(cfg.UseAtomicWrite()),
	)
	outcome, err := leads.NewMigrator(svc, rules).Run(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cli.GetOptions(cmd).JSONOutput {
		if err := printOutcomeJSON(out, outcome); err != nil {
			return err
		}
	} else {
		printOutcome(out, outcome)
	}

	if check && !outcome.UpToDate() {
		return fmt.Errorf("%s: %d field changes pending", outcome.Name, outcome.Changes)
	}
	return nil
}

func outcomeMessage(o *leads.Outcome) string {
	switch {
	case o.UpToDate():
		return "No changes needed. File already up to date."
	case o.DryRun:
		return fmt.Sprintf("Would update %s with %d field changes.", o.Name, o.Changes)
	default:
		return fmt.Sprintf("Updated %s with %d field changes.", o.Name, o.Changes)
	}
}

func printOutcome(w io.Writer, o *leads.Outcome) {
	style := successStyle
	if o.DryRun && !o.UpToDate() {
		style = warningStyle
	}
	render(w, style, outcomeMessage(o))
}

func printOutcomeJSON(w io.Writer, o *leads.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(o)
}
