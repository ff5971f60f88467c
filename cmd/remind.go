package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramanasai/checkin/internal/notify"
	"github.com/ramanasai/checkin/internal/schedule"
	"github.com/spf13/cobra"
)

var (
	remindEvery time.Duration
	remindNoNow bool
)

// remindCmd runs the scheduler without a UI: every fire is a desktop notification
// and answers are logged with `checkin log`.
var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send check-in notifications in the background",
	Long: `Examples:
	checkin remind                 # every timer.interval from the config
	checkin remind --every 30m     # override the interval
	checkin remind --skip-first    # don't notify immediately on start`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !debug {
			log.SetOutput(os.Stderr)
		}
		interval := cfg.Timer.Interval
		if remindEvery > 0 {
			interval = remindEvery
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		first := true
		sched := schedule.New(interval, func() {
			if first && remindNoNow {
				first = false
				return
			}
			first = false
			log.Printf("check-in due")
			if err := notify.Checkin(interval, cfg.Notifications.Sound); err != nil {
				log.Printf("notify: %v", err)
			}
		}, schedule.WithTick(min(cfg.Timer.Tick, interval)))

		fmt.Fprintf(cmd.OutOrStdout(), "Reminding every %s. Ctrl+C to stop.\n", interval)
		sched.Run(ctx)
		return nil
	},
}

func init() {
	remindCmd.Flags().DurationVar(&remindEvery, "every", 0, "Check-in interval (default: timer.interval)")
	remindCmd.Flags().BoolVar(&remindNoNow, "skip-first", false, "Skip the notification sent on start")
}
