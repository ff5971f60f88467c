package cmd

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ramanasai/checkin/internal/db"
	"github.com/ramanasai/checkin/internal/utils"
	"github.com/spf13/cobra"
)

var logAt string

var logCmd = &cobra.Command{
	Use:   "log [text]",
	Short: "Record a check-in answer",
	Long: `Examples:
	checkin log "reviewing the release notes"
	checkin log --at "30m ago" "standup"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at := now()
		if logAt != "" {
			var err error
			at, err = utils.ParseFlexibleDate(logAt, at, cfg.Location())
			if err != nil {
				return fmt.Errorf("invalid --at %q: %w", logAt, err)
			}
		}
		return withDB(func(dbh *sql.DB) error {
			id, err := db.SaveEntry(dbh, strings.Join(args, " "), at)
			if err != nil {
				return err
			}
			success(cmd, "Saved #%d.", id)
			return nil
		})
	},
}

func init() {
	logCmd.Flags().StringVar(&logAt, "at", "", "When it happened (e.g. '30m ago', '2025-01-15 14:00'; default now)")
}
