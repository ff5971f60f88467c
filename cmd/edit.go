package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ramanasai/checkin/internal/db"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <entry-id> <new text>",
	Short: "Replace the text of a check-in answer",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "entry")
		if err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")
		return withDB(func(dbh *sql.DB) error {
			if err := db.UpdateEntry(dbh, id, text); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return fmt.Errorf("entry with ID %d not found", id)
				}
				return err
			}
			success(cmd, "Entry #%d updated.", id)
			return nil
		})
	},
}

// parseID parses a positive record id; a leading '#' is accepted.
func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", what, s)
	}
	return id, nil
}
