package cmd

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ramanasai/checkin/internal/db"
	"github.com/spf13/cobra"
)

// summaryCmd prints today's check-ins plus open todos and this week's goal progress.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Daily summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := cfg.Location()
		current := now().In(loc)
		start := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, loc)

		return withDB(func(dbh *sql.DB) error {
			checkins, err := db.CountEntries(dbh, start, time.Time{})
			if err != nil {
				return err
			}
			todos, err := db.ListTodos(dbh)
			if err != nil {
				return err
			}
			goals, err := db.CurrentWeekGoals(dbh, current)
			if err != nil {
				return err
			}

			var open, doneToday int
			for _, t := range todos {
				switch {
				case !t.Completed:
					open++
				case !t.CompletedAt.Before(start):
					doneToday++
				}
			}
			var goalsDone int
			for _, g := range goals {
				if g.Completed {
					goalsDone++
				}
			}
			week, _ := db.WeekOf(current)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("Today (%s):", start.Format("2006-01-02"))))
			fmt.Fprintf(out, "  %-12s %3d\n", "check-ins", checkins)
			fmt.Fprintf(out, "  %-12s %3d\n", "todos done", doneToday)
			fmt.Fprintf(out, "  %-12s %3d\n", "todos open", open)
			fmt.Fprintf(out, "  %-12s %3d/%d (week %d)\n", "goals done", goalsDone, len(goals), week)
			return nil
		})
	},
}
