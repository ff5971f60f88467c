package cmd

import (
	"fmt"

	"github.com/ramanasai/checkin/internal/version"
	"github.com/spf13/cobra"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionShort {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetVersion())
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionInfo())
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}
