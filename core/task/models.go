package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/oscardm22/estuguia/core"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Status transitions freely between the three values; there is no
// state-machine guard.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Task is an assignment, optionally tied to a schedule. An empty ScheduleID
// means "no specific subject". ReminderAt, when set, should precede the due
// date; this is advisory and not enforced.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	ScheduleID  string     `json:"schedule_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     time.Time  `json:"due_date"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	ReminderAt  *time.Time `json:"reminder_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at"` // UTC
}

// NewTask contains information needed to create a Task. Status is always
// PENDING on creation.
type NewTask struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	ScheduleID  string     `json:"schedule_id"`
	DueDate     time.Time  `json:"due_date" validate:"required"`
	Priority    Priority   `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	ReminderAt  *time.Time `json:"reminder_at"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	if nt.Priority == "" {
		nt.Priority = PriorityMedium
	}
	return validate.Struct(nt)
}

// UpdateTask is a whole-document overwrite; last write wins at the store.
type UpdateTask struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	ScheduleID  string     `json:"schedule_id"`
	DueDate     time.Time  `json:"due_date" validate:"required"`
	Priority    Priority   `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH"`
	Status      Status     `json:"status" validate:"required,oneof=PENDING IN_PROGRESS COMPLETED"`
	ReminderAt  *time.Time `json:"reminder_at"`
}

func (ut *UpdateTask) Validate(validate *validator.Validate) error {
	ut.Title = core.CleanString(ut.Title)
	return validate.Struct(ut)
}
