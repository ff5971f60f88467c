package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ramanasai/checkin/internal/config"
	"github.com/ramanasai/checkin/internal/db"
	"github.com/ramanasai/checkin/internal/ui"
	"github.com/spf13/cobra"
)

var (
	debug   bool
	dbPath  string
	cfg     config.Config
	logFile *os.File
	theme   ui.Theme
)

// now is the clock the commands stamp records with.
var now = time.Now

var rootCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Periodic check-ins, todos and weekly goals",
	Long: `checkin asks what you have been working on every few minutes and keeps the
answers, along with your todos and weekly goals, in a local SQLite database.

Run without a subcommand to open the TUI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}
		if dbPath != "" {
			cfg.Database.Path = dbPath
		}
		theme = ui.ThemeByName(cfg.Theme)
		return setupLogging()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func Execute() error { return rootCmd.Execute() }

// setupLogging sends log output to the debug file, or discards it. The TUI owns the
// terminal, so nothing may go to stdout or stderr while it runs.
func setupLogging() error {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}
	path, err := cfg.LogPath()
	if err != nil {
		return err
	}
	f, err := tea.LogToFile(path, "checkin")
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	logFile = f
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return nil
}

func openDB() (*sql.DB, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	log.Printf("opening database %s", path)
	return db.Open(path)
}

// withDB opens the database for the duration of fn.
func withDB(fn func(dbh *sql.DB) error) error {
	dbh, err := openDB()
	if err != nil {
		return err
	}
	defer dbh.Close()
	return fn(dbh)
}

func success(cmd *cobra.Command, format string, a ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), theme.Success.Render(fmt.Sprintf(format, a...)))
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write a debug log (see log.file in the config)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (overrides database.path)")

	rootCmd.AddCommand(tuiCmd, remindCmd, logCmd, historyCmd, searchCmd, editCmd, deleteCmd,
		summaryCmd, todoCmd, tagCmd, goalCmd, versionCmd)
}
