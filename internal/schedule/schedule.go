// Package schedule converts scan schedules between the tagged wire form and
// the form parameters edited in the console.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/policykit/policyconv/internal/models"
)

var (
	ErrInvalidTime     = errors.New("invalid schedule time")
	ErrInvalidDay      = errors.New("invalid schedule day")
	ErrInvalidInterval = errors.New("invalid schedule interval")
)

const (
	minWeekday  = 0
	maxWeekday  = 6
	minMonthDay = 1
	maxMonthDay = 31
)

// FromFormParameters encodes form parameters as a Schedule. An empty
// interval type is treated as UNSET.
func FromFormParameters(p models.ScheduleFormParameters) (models.Schedule, error) {
	interval := p.IntervalType
	if interval == "" {
		interval = models.IntervalUnset
	}
	if interval == models.IntervalUnset {
		return models.Schedule{IntervalType: models.IntervalUnset}, nil
	}

	hour, minute, err := parseTime(p.Time)
	if err != nil {
		return models.Schedule{}, err
	}
	s := models.Schedule{IntervalType: interval, Hour: hour, Minute: minute}

	switch interval {
	case models.IntervalDaily:
	case models.IntervalWeekly:
		days, err := parseDays(p.DaysOfWeek, minWeekday, maxWeekday)
		if err != nil {
			return models.Schedule{}, fmt.Errorf("daysOfWeek: %w", err)
		}
		s.DaysOfWeek = &models.DaysOfWeek{Days: days}
	case models.IntervalMonthly:
		days, err := parseDays(p.DaysOfMonth, minMonthDay, maxMonthDay)
		if err != nil {
			return models.Schedule{}, fmt.Errorf("daysOfMonth: %w", err)
		}
		s.DaysOfMonth = &models.DaysOfMonth{Days: days}
	default:
		return models.Schedule{}, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}
	return s, nil
}

// ToFormParameters decodes a Schedule into form parameters. Day lists are
// always non-nil.
func ToFormParameters(s models.Schedule) (models.ScheduleFormParameters, error) {
	p := models.ScheduleFormParameters{
		IntervalType: s.IntervalType,
		DaysOfWeek:   []string{},
		DaysOfMonth:  []string{},
	}

	switch s.IntervalType {
	case "", models.IntervalUnset:
		p.IntervalType = models.IntervalUnset
		return p, nil
	case models.IntervalDaily:
	case models.IntervalWeekly:
		if s.DaysOfWeek == nil {
			return p, fmt.Errorf("%w: weekly schedule without daysOfWeek", ErrInvalidDay)
		}
		if err := checkDays(s.DaysOfWeek.Days, minWeekday, maxWeekday); err != nil {
			return p, fmt.Errorf("daysOfWeek: %w", err)
		}
		p.DaysOfWeek = formatDays(s.DaysOfWeek.Days)
	case models.IntervalMonthly:
		if s.DaysOfMonth == nil {
			return p, fmt.Errorf("%w: monthly schedule without daysOfMonth", ErrInvalidDay)
		}
		if err := checkDays(s.DaysOfMonth.Days, minMonthDay, maxMonthDay); err != nil {
			return p, fmt.Errorf("daysOfMonth: %w", err)
		}
		p.DaysOfMonth = formatDays(s.DaysOfMonth.Days)
	default:
		return p, fmt.Errorf("%w: %q", ErrInvalidInterval, s.IntervalType)
	}

	if err := checkClock(s.Hour, s.Minute); err != nil {
		return p, err
	}
	p.Time = fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
	return p, nil
}

// parseTime accepts "HH:MM" or "HH MM"
func parseTime(raw string) (int, int, error) {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ':' || r == ' ' })
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	if err := checkClock(hour, minute); err != nil {
		return 0, 0, err
	}
	return hour, minute, nil
}

func checkClock(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("%w: hour %d out of range", ErrInvalidTime, hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("%w: minute %d out of range", ErrInvalidTime, minute)
	}
	return nil
}

func parseDays(raw []string, lo, hi int) ([]int, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one day is required", ErrInvalidDay)
	}
	days := make([]int, len(raw))
	for i, r := range raw {
		d, err := strconv.Atoi(strings.TrimSpace(r))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDay, r)
		}
		days[i] = d
	}
	if err := checkDays(days, lo, hi); err != nil {
		return nil, err
	}
	return days, nil
}

func checkDays(days []int, lo, hi int) error {
	if len(days) == 0 {
		return fmt.Errorf("%w: at least one day is required", ErrInvalidDay)
	}
	for _, d := range days {
		if d < lo || d > hi {
			return fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidDay, d, lo, hi)
		}
	}
	return nil
}

func formatDays(days []int) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = strconv.Itoa(d)
	}
	return out
}
