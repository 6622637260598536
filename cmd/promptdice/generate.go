package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptdice/internal/api"
	"github.com/jackzampolin/promptdice/internal/dice"
)

var generateCount int

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print prompts filled from the built-in values",
	Long: `Fill the default template from the built-in values without a server.

This is the same fill the /api/generate endpoint performs; customized dice
are never read. Missing categories render as [category].

Examples:
  promptdice generate
  promptdice generate --count 5 -o text`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateCount < 1 {
			return fmt.Errorf("--count must be at least 1, got %d", generateCount)
		}
		prompts := make([]string, generateCount)
		for i := range prompts {
			prompts[i] = dice.Fill(dice.DefaultTemplate, dice.DefaultDataset(), dice.DefaultRoller)
		}

		if api.GetOutputFormat() == api.OutputFormatText {
			for _, p := range prompts {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		}
		return api.Output(map[string][]string{"prompts": prompts})
	},
}

func init() {
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 1, "Number of prompts to print")
	rootCmd.AddCommand(generateCmd)
}
