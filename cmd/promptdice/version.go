package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptdice/internal/api"
	"github.com/jackzampolin/promptdice/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := version.Get()
		if err != nil {
			cmd.PrintErrln("warning:", err)
		}
		if api.GetOutputFormat() == api.OutputFormatText {
			fmt.Printf("promptdice %s\n", info.Release)
			fmt.Printf("  Go:     %s\n", info.Go)
			fmt.Printf("  Commit: %s\n", info.Commit)
			fmt.Printf("  Date:   %s\n", info.CommitDate)
			return nil
		}
		return api.Output(info)
	},
}
