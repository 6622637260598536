package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptdice/internal/api"
	"github.com/jackzampolin/promptdice/internal/config"
	"github.com/jackzampolin/promptdice/internal/home"
	"github.com/jackzampolin/promptdice/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "promptdice",
	Short: "Roll random prompts from editable category dice",
	Long: `promptdice builds short prompts from a template with **category** slots,
filling each slot by rolling a die of user-editable values.

It provides:
  - A browser UI and JSON API (promptdice serve)
  - A stateless generate endpoint that only uses the built-in values
  - CLI commands for every API operation (promptdice api ...)`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.promptdice/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "promptdice home directory (default: ~/.promptdice)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml, json or text",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the home directory and loads configuration from
// --config, ./config.yaml or the home directory, in that order.
func loadConfig() (*home.Dir, *config.Manager, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	mgr, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, nil, err
	}
	return h, mgr, nil
}
