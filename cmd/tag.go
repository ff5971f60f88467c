package cmd

import (
	"database/sql"
	"fmt"

	"github.com/ramanasai/checkin/internal/db"
	"github.com/spf13/cobra"
)

var tagSearch string

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Inspect tags",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(dbh *sql.DB) error {
			out := cmd.OutOrStdout()
			if tagSearch != "" {
				names, err := db.SearchTags(dbh, tagSearch, 50)
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(out, "#"+n)
				}
				return nil
			}
			tags, err := db.ListTags(dbh)
			if err != nil {
				return err
			}
			for _, t := range tags {
				fmt.Fprintf(out, "%4d  #%s\n", t.ID, t.Name)
			}
			return nil
		})
	},
}

func init() {
	tagListCmd.Flags().StringVarP(&tagSearch, "search", "s", "", "Only tags containing this text, best match first")
	tagCmd.AddCommand(tagListCmd)
}
