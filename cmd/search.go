package cmd

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ramanasai/checkin/internal/db"
	"github.com/ramanasai/checkin/internal/utils"
	"github.com/spf13/cobra"
)

var (
	searchSince string
	searchUntil string
	searchLimit int
)

// searchCmd performs an FTS5 search with highlighted snippets.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over check-in answers",
	Long: `Examples:
	checkin search "deploy failed"             # all words must appear
	checkin search 'incid*'                     # prefix search
	checkin search retro --since month`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		loc := cfg.Location()
		current := now()

		sinceTime := current.AddDate(0, 0, -90)
		var err error
		if searchSince != "" {
			if sinceTime, err = utils.ParseFlexibleDate(searchSince, current, loc); err != nil {
				return fmt.Errorf("invalid --since date %q: %w", searchSince, err)
			}
		}
		untilTime := current
		if searchUntil != "" {
			if untilTime, err = utils.ParseFlexibleDate(searchUntil, current, loc); err != nil {
				return fmt.Errorf("invalid --until date %q: %w", searchUntil, err)
			}
		}
		if searchLimit <= 0 || searchLimit > 1000 {
			searchLimit = 200
		}

		return withDB(func(dbh *sql.DB) error {
			hits, err := db.SearchEntries(dbh, query, sinceTime, untilTime, searchLimit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := utils.DefaultRenderConfig().Width
			sep := lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
			meta := lipgloss.NewStyle().Faint(true)
			match := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF"))
			rule := sep.Render(strings.Repeat("─", min(w, 120)))

			fmt.Fprintln(out, theme.Title.Render("Search")+"  "+sep.Render("query: ")+query)
			fmt.Fprintln(out, rule)
			for _, h := range hits {
				fmt.Fprintln(out, meta.Render(fmt.Sprintf("[%d] %s", h.ID, h.At.In(loc).Format("2006-01-02 15:04"))))
				fmt.Fprintln(out, "  "+highlightSnippet(h.Snippet, match))
				fmt.Fprintln(out, rule)
			}
			if len(hits) == 0 {
				fmt.Fprintln(out, meta.Render("no results"))
			}
			return nil
		})
	},
}

// highlightSnippet styles the [ ... ] spans that snippet() puts around matches.
func highlightSnippet(s string, style lipgloss.Style) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(s, '[')
		if open < 0 {
			break
		}
		end := strings.IndexByte(s[open:], ']')
		if end < 0 {
			break
		}
		b.WriteString(s[:open])
		b.WriteString(style.Render(s[open+1 : open+end]))
		s = s[open+end+1:]
	}
	b.WriteString(s)
	return b.String()
}

func init() {
	searchCmd.Flags().StringVar(&searchSince, "since", "", "Start of range (default: 90 days ago)")
	searchCmd.Flags().StringVar(&searchUntil, "until", "", "End of range (default: now)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 200, "Max results")
}
