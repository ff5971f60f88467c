package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	agoPattern  = regexp.MustCompile(`^(\d+)\s*(m|min|mins|minutes?|h|hours?|d|days?|w|weeks?)$`)
	dateFormats = []string{"2006-01-02", "2006/01/02", "2006-01-02 15:04", time.RFC3339}
)

// ParseFlexibleDate understands today, yesterday, "this week", "<n><unit> [ago]"
// (units m, h, d, w) and a handful of absolute formats, all relative to now in loc.
func ParseFlexibleDate(input string, now time.Time, loc *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(input)
	input = strings.ToLower(raw)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date input")
	}
	now = now.In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch input {
	case "now":
		return now, nil
	case "today":
		return midnight, nil
	case "yesterday":
		return midnight.AddDate(0, 0, -1), nil
	case "this week", "week":
		weekday := int(now.Weekday())
		if weekday == 0 { // Sunday
			weekday = 7
		}
		return midnight.AddDate(0, 0, -(weekday - 1)), nil
	case "this month", "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc), nil
	}

	rel := strings.TrimSpace(strings.TrimSuffix(input, " ago"))
	if m := agoPattern.FindStringSubmatch(rel); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2][0] {
		case 'm':
			return now.Add(-time.Duration(n) * time.Minute), nil
		case 'h':
			return now.Add(-time.Duration(n) * time.Hour), nil
		case 'd':
			return now.AddDate(0, 0, -n), nil
		case 'w':
			return now.AddDate(0, 0, -7*n), nil
		}
	}

	for _, layout := range dateFormats {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", raw)
}
