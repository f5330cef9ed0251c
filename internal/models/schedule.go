package models

// IntervalType of a scan schedule
type IntervalType string

const (
	IntervalDaily   IntervalType = "DAILY"
	IntervalWeekly  IntervalType = "WEEKLY"
	IntervalMonthly IntervalType = "MONTHLY"
	IntervalUnset   IntervalType = "UNSET"
)

// DaysOfWeek for weekly schedules, Sunday is 0
type DaysOfWeek struct {
	Days []int `json:"days"`
}

// DaysOfMonth for monthly schedules, 1 through 31
type DaysOfMonth struct {
	Days []int `json:"days"`
}

// Schedule is the tagged wire form of a scan schedule. IntervalType selects
// the variant; DaysOfWeek is set only for WEEKLY and DaysOfMonth only for
// MONTHLY.
type Schedule struct {
	IntervalType IntervalType `json:"intervalType"`
	Hour         int          `json:"hour"`
	Minute       int          `json:"minute"`
	DaysOfWeek   *DaysOfWeek  `json:"daysOfWeek,omitempty"`
	DaysOfMonth  *DaysOfMonth `json:"daysOfMonth,omitempty"`
}

// ScheduleFormParameters form shape of a schedule
type ScheduleFormParameters struct {
	IntervalType IntervalType `json:"intervalType"`
	Time         string       `json:"time"`
	DaysOfWeek   []string     `json:"daysOfWeek"`
	DaysOfMonth  []string     `json:"daysOfMonth"`
}
