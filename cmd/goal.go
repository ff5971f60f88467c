package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/ramanasai/checkin/internal/db"
	"github.com/ramanasai/checkin/internal/notify"
	"github.com/ramanasai/checkin/internal/utils"
	"github.com/spf13/cobra"
)

var (
	goalWeek int
	goalYear int
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage weekly goals",
}

var goalAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a goal for the current week",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(dbh *sql.DB) error {
			at := now().In(cfg.Location())
			id, err := db.CreateGoal(dbh, strings.Join(args, " "), at)
			if err != nil {
				return err
			}
			week, year := db.WeekOf(at)
			success(cmd, "Goal #%d added to week %d, %d.", id, week, year)
			return nil
		})
	},
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a week's goals with their linked todos",
	Long: `Examples:
	checkin goal list                  # this week
	checkin goal list --week 10        # week 10 of this year
	checkin goal list --week 52 --year 2024`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := renderConfigFromFlags()
		if err != nil {
			return err
		}
		week, year := db.WeekOf(now().In(cfg.Location()))
		if goalWeek > 0 {
			week = goalWeek
		}
		if goalYear > 0 {
			year = goalYear
		}
		return withDB(func(dbh *sql.DB) error {
			goals, err := db.GoalsForWeek(dbh, week, year)
			if err != nil {
				return err
			}
			out, err := utils.NewRenderer(rc).RenderGoals(week, year, goals)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		})
	},
}

func goalCompleteCmd(use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <goal-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "goal")
			if err != nil {
				return err
			}
			return withDB(func(dbh *sql.DB) error {
				if err := db.SetGoalCompleted(dbh, id, completed, now()); err != nil {
					return err
				}
				if !completed {
					success(cmd, "Goal #%d reopened.", id)
					return nil
				}
				msg := fmt.Sprintf("Goal #%d done.", id)
				success(cmd, "%s", msg)
				if cfg.Notifications.Enabled {
					if err := notify.Done(msg); err != nil {
						log.Printf("notify: %v", err)
					}
				}
				return nil
			})
		},
	}
}

var goalRmCmd = &cobra.Command{
	Use:     "rm <goal-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a goal (linked todos are kept)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "goal")
		if err != nil {
			return err
		}
		return withDB(func(dbh *sql.DB) error {
			if err := db.DeleteGoal(dbh, id); err != nil {
				return err
			}
			success(cmd, "Goal #%d deleted.", id)
			return nil
		})
	},
}

func init() {
	goalListCmd.Flags().IntVar(&goalWeek, "week", 0, "Week number (default: current week)")
	goalListCmd.Flags().IntVar(&goalYear, "year", 0, "Year (default: current year)")
	addOutputFlags(goalListCmd)

	goalCmd.AddCommand(
		goalAddCmd,
		goalListCmd,
		goalCompleteCmd("done", "Mark a goal done", true),
		goalCompleteCmd("undo", "Reopen a goal", false),
		goalRmCmd,
	)
}
