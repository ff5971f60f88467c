package cmd

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ramanasai/checkin/internal/db"
	"github.com/ramanasai/checkin/internal/utils"
	"github.com/spf13/cobra"
)

var (
	todoTags    []string
	todoPending bool
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage todos",
}

var todoAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a todo",
	Long: `Examples:
	checkin todo add "write release notes" --tag docs --tag release
	checkin todo add "call the bank" -t errands`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(dbh *sql.DB) error {
			id, err := db.CreateTodo(dbh, strings.Join(args, " "), todoTags, now())
			if err != nil {
				return err
			}
			success(cmd, "Todo #%d added.", id)
			return nil
		})
	},
}

var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos, open ones first",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := renderConfigFromFlags()
		if err != nil {
			return err
		}
		return withDB(func(dbh *sql.DB) error {
			todos, err := db.ListTodos(dbh)
			if err != nil {
				return err
			}
			if todoPending {
				open := todos[:0]
				for _, t := range todos {
					if !t.Completed {
						open = append(open, t)
					}
				}
				todos = open
			}
			out, err := utils.NewRenderer(rc).RenderTodos(todos)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		})
	},
}

func todoCompleteCmd(use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <todo-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "todo")
			if err != nil {
				return err
			}
			return withDB(func(dbh *sql.DB) error {
				if err := db.SetTodoCompleted(dbh, id, completed, now()); err != nil {
					return err
				}
				if completed {
					success(cmd, "Todo #%d done.", id)
				} else {
					success(cmd, "Todo #%d reopened.", id)
				}
				return nil
			})
		},
	}
}

var todoRmCmd = &cobra.Command{
	Use:     "rm <todo-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a todo",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "todo")
		if err != nil {
			return err
		}
		return withDB(func(dbh *sql.DB) error {
			if err := db.DeleteTodo(dbh, id); err != nil {
				return err
			}
			success(cmd, "Todo #%d deleted.", id)
			return nil
		})
	},
}

var todoTagCmd = &cobra.Command{
	Use:   "tag <todo-id> <tag>...",
	Short: "Tag a todo, creating tags as needed",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "todo")
		if err != nil {
			return err
		}
		return withDB(func(dbh *sql.DB) error {
			if _, err := db.GetTodo(dbh, id); err != nil {
				return err
			}
			for _, name := range args[1:] {
				name = strings.TrimPrefix(name, "#")
				tag, changed, err := db.AssignTagByName(dbh, id, name)
				if err != nil {
					return err
				}
				if changed {
					success(cmd, "Todo #%d tagged #%s.", id, tag.Name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Todo #%d already tagged #%s.\n", id, tag.Name)
				}
			}
			return nil
		})
	},
}

var todoUntagCmd = &cobra.Command{
	Use:   "untag <todo-id> <tag>",
	Short: "Remove a tag from a todo",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "todo")
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(args[1], "#")
		return withDB(func(dbh *sql.DB) error {
			tags, err := db.TagsForTodo(dbh, id)
			if err != nil {
				return err
			}
			for _, t := range tags {
				if strings.EqualFold(t.Name, name) {
					if err := db.RemoveTag(dbh, id, t.ID); err != nil {
						return err
					}
					success(cmd, "Removed #%s from todo #%d.", t.Name, id)
					return nil
				}
			}
			return fmt.Errorf("todo #%d is not tagged #%s", id, name)
		})
	},
}

func todoGoalCmd(use, short string, link bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <todo-id> <goal-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			todoID, err := parseID(args[0], "todo")
			if err != nil {
				return err
			}
			goalID, err := parseID(args[1], "goal")
			if err != nil {
				return err
			}
			return withDB(func(dbh *sql.DB) error {
				if !link {
					if err := db.UnlinkTodoFromGoal(dbh, todoID, goalID); err != nil {
						return err
					}
					success(cmd, "Todo #%d unlinked from goal #%d.", todoID, goalID)
					return nil
				}
				changed, err := db.LinkTodoToGoal(dbh, todoID, goalID)
				if err != nil {
					return err
				}
				if !changed {
					fmt.Fprintf(cmd.OutOrStdout(), "Todo #%d is already linked to goal #%d.\n", todoID, goalID)
					return nil
				}
				success(cmd, "Todo #%d linked to goal #%d.", todoID, goalID)
				return nil
			})
		},
	}
}

func init() {
	todoAddCmd.Flags().StringSliceVarP(&todoTags, "tag", "t", nil, "Tag to attach (repeatable or comma separated)")
	todoListCmd.Flags().BoolVar(&todoPending, "pending", false, "Only show open todos")
	addOutputFlags(todoListCmd)

	todoCmd.AddCommand(
		todoAddCmd,
		todoListCmd,
		todoCompleteCmd("done", "Mark a todo done", true),
		todoCompleteCmd("undo", "Reopen a todo", false),
		todoRmCmd,
		todoTagCmd,
		todoUntagCmd,
		todoGoalCmd("link", "Link a todo to a weekly goal", true),
		todoGoalCmd("unlink", "Unlink a todo from a weekly goal", false),
	)
}
