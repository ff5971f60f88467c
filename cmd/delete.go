package cmd

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ramanasai/checkin/internal/db"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a check-in answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "entry")
		if err != nil {
			return err
		}
		return withDB(func(dbh *sql.DB) error {
			if err := db.DeleteEntry(dbh, id); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return fmt.Errorf("entry #%d not found", id)
				}
				return err
			}
			success(cmd, "Entry #%d deleted.", id)
			return nil
		})
	},
}
