package schedule

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/oscardm22/estuguia/core"
)

// Turn is the half-day bucket a class falls into, derived from its start hour.
type Turn string

const (
	TurnMorning   Turn = "MORNING"
	TurnAfternoon Turn = "AFTERNOON"
)

var dayNames = map[int]string{
	1: "Lunes",
	2: "Martes",
	3: "Miércoles",
	4: "Jueves",
	5: "Viernes",
}

// DayName returns the display name for a 1-5 day of week.
func DayName(dayOfWeek int) string {
	if name, ok := dayNames[dayOfWeek]; ok {
		return name
	}
	return "Desconocido"
}

// TurnName returns the display name for a turn.
func TurnName(t Turn) string {
	switch t {
	case TurnMorning:
		return "Mañana"
	case TurnAfternoon:
		return "Tarde"
	}
	return "Desconocido"
}

// DeriveTurn buckets a "HH:MM" start time: hour 0-11 is MORNING, the rest
// AFTERNOON. Malformed input defaults to MORNING; it never panics.
func DeriveTurn(startTime string) Turn {
	hourStr := strings.SplitN(startTime, ":", 2)[0]
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return TurnMorning
	}
	if hour < 12 {
		return TurnMorning
	}
	return TurnAfternoon
}

// Schedule is one recurring weekly class meeting.
type Schedule struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CourseName string    `json:"course_name"`
	CourseCode string    `json:"course_code,omitempty"`
	DayOfWeek  int       `json:"day_of_week"` // 1 (Monday) - 5 (Friday)
	StartTime  string    `json:"start_time"`  // "HH:MM", zero-padded
	EndTime    string    `json:"end_time"`
	Turn       Turn      `json:"turn"`
	Classroom  string    `json:"classroom,omitempty"`
	Professor  string    `json:"professor,omitempty"`
	Color      int       `json:"color"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// Sort orders schedules by day, then start time, then course name.
// "HH:MM" zero-padding makes the lexicographic time comparison numeric.
func Sort(schedules []Schedule) {
	sort.SliceStable(schedules, func(i, j int) bool {
		a, b := schedules[i], schedules[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.CourseName < b.CourseName
	})
}

// Stats summarizes an in-memory schedule list.
type Stats struct {
	Total         int `json:"total"`
	DistinctDays  int `json:"distinct_days"`
	DistinctTurns int `json:"distinct_turns"`
}

func ComputeStats(schedules []Schedule) Stats {
	days := make(map[int]struct{})
	turns := make(map[Turn]struct{})
	for _, s := range schedules {
		days[s.DayOfWeek] = struct{}{}
		turns[s.Turn] = struct{}{}
	}
	return Stats{
		Total:         len(schedules),
		DistinctDays:  len(days),
		DistinctTurns: len(turns),
	}
}

// NextClassAfter picks the earliest start time strictly after now ("HH:MM").
// The second return is false when no class qualifies.
func NextClassAfter(schedules []Schedule, now string) (string, bool) {
	var next string
	for _, s := range schedules {
		if s.StartTime <= now {
			continue
		}
		if next == "" || s.StartTime < next {
			next = s.StartTime
		}
	}
	return next, next != ""
}

// NewSchedule contains information needed to create a class meeting.
type NewSchedule struct {
	CourseName string `json:"course_name" validate:"required"`
	CourseCode string `json:"course_code"`
	DayOfWeek  int    `json:"day_of_week" validate:"required,min=1,max=5"`
	StartTime  string `json:"start_time" validate:"required,hhmm"`
	EndTime    string `json:"end_time" validate:"required,hhmm"`
	Classroom  string `json:"classroom"`
	Professor  string `json:"professor"`
	Color      int    `json:"color"`
}

func (ns *NewSchedule) Validate(validate *validator.Validate) error {
	ns.CourseName = core.CleanString(ns.CourseName)
	ns.StartTime = core.CleanString(ns.StartTime)
	ns.EndTime = core.CleanString(ns.EndTime)
	return validate.Struct(ns)
}

// UpdateSchedule is a whole-document overwrite; last write wins at the store.
type UpdateSchedule struct {
	CourseName string `json:"course_name" validate:"required"`
	CourseCode string `json:"course_code"`
	DayOfWeek  int    `json:"day_of_week" validate:"required,min=1,max=5"`
	StartTime  string `json:"start_time" validate:"required,hhmm"`
	EndTime    string `json:"end_time" validate:"required,hhmm"`
	Classroom  string `json:"classroom"`
	Professor  string `json:"professor"`
	Color      int    `json:"color"`
}

func (us *UpdateSchedule) Validate(validate *validator.Validate) error {
	us.CourseName = core.CleanString(us.CourseName)
	us.StartTime = core.CleanString(us.StartTime)
	us.EndTime = core.CleanString(us.EndTime)
	return validate.Struct(us)
}
