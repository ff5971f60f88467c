package cmd

import (
	"github.com/ramanasai/checkin/internal/ui"
	"github.com/spf13/cobra"
)

// tuiCmd launches the Bubble Tea TUI with the check-in timer running.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func runTUI() error {
	dbh, err := openDB()
	if err != nil {
		return err
	}
	defer dbh.Close()
	return ui.Run(cfg, dbh)
}
