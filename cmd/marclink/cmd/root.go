// Package cmd implements the marclink CLI commands.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/marclink/internal/config"
	"github.com/agentstation/marclink/pkg/logging"
)

var quiet bool

// rootCmd is the base command for the marclink CLI.
var rootCmd = &cobra.Command{
	Use:   "marclink",
	Short: "Authority-linking suggestion and change-propagation engine",
	Long: `marclink links bibliographic MARC records to authority records,
computes the subfield changes an authority edit pushes into linked
bibliographic fields, and batches change events for emission.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		switch {
		case quiet:
			logging.SetDefault(logging.Nop)
		case config.LogFormat() == "json":
			logging.SetDefault(logging.NewJSON(os.Stderr))
		}
	},
}

func init() {
	config.Init()

	rootCmd.PersistentFlags().String(config.KeyTenant, "", "tenant identifier")
	rootCmd.PersistentFlags().String(config.KeyRulesFile, "", "path to the YAML linking rule file")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress log output")
	_ = viper.BindPFlag(config.KeyTenant, rootCmd.PersistentFlags().Lookup(config.KeyTenant))
	_ = viper.BindPFlag(config.KeyRulesFile, rootCmd.PersistentFlags().Lookup(config.KeyRulesFile))

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(rulesCmd)
}

// Execute runs the CLI with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
