package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/marclink/internal/config"
	"github.com/agentstation/marclink/pkg/rules"
)

// rulesCmd groups rule table subcommands.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate linking rule files",
}

// rulesValidateCmd loads a YAML rule file and runs full table validation,
// including the one-rule-per-bib-tag and duplicate-target checks.
var rulesValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a YAML linking rule file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.RulesFile()
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("a rule file is required (argument, --rules_file, or MARCLINK_RULES_FILE)")
		}

		loaded, err := rules.NewFileSource(path).Rules(cmd.Context(), "")
		if err != nil {
			return err
		}
		table, err := rules.NewTable(loaded)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules ok\n", path, table.Len())
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesValidateCmd)
}
