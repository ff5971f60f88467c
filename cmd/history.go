package cmd

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ramanasai/checkin/internal/db"
	"github.com/ramanasai/checkin/internal/utils"
	"github.com/spf13/cobra"
)

var (
	since   string
	until   string
	limit   int
	page    int
	format  string
	noColor bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"list"},
	Short:   "List check-in answers, newest first",
	Long: `Examples:
	checkin history                          # last 24h
	checkin history --since yesterday        # since midnight yesterday
	checkin history --since "2 hours ago"
	checkin history --since week --page 2    # this week, second page
	checkin history --format json --limit 500`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := cfg.Location()
		renderConfig, err := renderConfigFromFlags()
		if err != nil {
			return err
		}

		current := now()
		sinceTime := current.Add(-24 * time.Hour)
		if since != "" {
			if sinceTime, err = utils.ParseFlexibleDate(since, current, loc); err != nil {
				return fmt.Errorf("invalid --since date %q: %w", since, err)
			}
		}
		var untilTime time.Time
		if until != "" {
			if untilTime, err = utils.ParseFlexibleDate(until, current, loc); err != nil {
				return fmt.Errorf("invalid --until date %q: %w", until, err)
			}
		}

		if limit <= 0 || limit > 1000 {
			limit = 50
		}

		return withDB(func(dbh *sql.DB) error {
			total, err := db.CountEntries(dbh, sinceTime, untilTime)
			if err != nil {
				return err
			}
			pagination := utils.NewPagination(total, limit, page)
			entries, err := db.ListEntries(dbh, sinceTime, untilTime, pagination.PerPage, pagination.Offset)
			if err != nil {
				return err
			}

			output, err := utils.NewRenderer(renderConfig).RenderEntries(&utils.EntryList{
				Entries:    entries,
				Total:      total,
				Page:       pagination.Current,
				PerPage:    pagination.PerPage,
				TotalPages: pagination.TotalPages,
				Since:      sinceTime,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), output)
			return nil
		})
	},
}

// renderConfigFromFlags applies --format and --no-color, shared by the listing commands.
func renderConfigFromFlags() (*utils.RenderConfig, error) {
	rc := utils.DefaultRenderConfig()
	f, err := utils.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	rc.Format = f
	rc.Color = !noColor
	rc.Location = cfg.Location()
	return rc, nil
}

func addOutputFlags(c *cobra.Command) {
	c.Flags().StringVar(&format, "format", "default", "Output format: default, json, csv, quiet")
	c.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func init() {
	historyCmd.Flags().StringVar(&since, "since", "", "Start of range (today, yesterday, week, month, '2 hours ago', 2025-01-15; default 24h ago)")
	historyCmd.Flags().StringVar(&until, "until", "", "End of range, exclusive (same forms as --since)")
	historyCmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries per page")
	historyCmd.Flags().IntVar(&page, "page", 1, "Page number")
	addOutputFlags(historyCmd)
}
