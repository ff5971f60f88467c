package notify

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
)

const appName = "checkin"

func Info(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Alert is Info with a sound.
func Alert(title, message string) error {
	return beeep.Alert(title, message, "")
}

// CheckinPrompt builds the text shown when the check-in timer fires.
func CheckinPrompt(interval time.Duration) (string, string) {
	title := "Time to check in"
	msg := fmt.Sprintf("What have you been working on for the last %s?", humanInterval(interval))
	return title, msg
}

// Checkin sends the check-in prompt, with sound if requested.
func Checkin(interval time.Duration, sound bool) error {
	title, msg := CheckinPrompt(interval)
	if sound {
		return Alert(title, msg)
	}
	return Info(title, msg)
}

// Done reports a finished action, e.g. from the CLI.
func Done(message string) error {
	return beeep.Notify(appName, message, "")
}

func humanInterval(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if d == time.Hour {
			return "hour"
		}
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d >= time.Minute && d%time.Minute == 0:
		if d == time.Minute {
			return "minute"
		}
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
