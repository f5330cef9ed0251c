package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/policykit/policyconv/internal/models"
)

// Describe renders a schedule for display, e.g.
// "Weekly on Monday and Friday at 15:00 UTC"
func Describe(s models.Schedule) string {
	at := fmt.Sprintf("at %02d:%02d UTC", s.Hour, s.Minute)

	switch s.IntervalType {
	case models.IntervalDaily:
		return "Daily " + at
	case models.IntervalWeekly:
		var names []string
		if s.DaysOfWeek != nil {
			for _, d := range s.DaysOfWeek.Days {
				names = append(names, time.Weekday(d).String())
			}
		}
		return fmt.Sprintf("Weekly on %s %s", joinList(names), at)
	case models.IntervalMonthly:
		var names []string
		if s.DaysOfMonth != nil {
			for _, d := range s.DaysOfMonth.Days {
				names = append(names, ordinal(d))
			}
		}
		return fmt.Sprintf("Monthly on the %s %s", joinList(names), at)
	default:
		return "Not scheduled"
	}
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return "no days"
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
