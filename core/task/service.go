package task

import (
	"context"
	"errors"
	"time"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/reminder"
)

var (
	// errors
	ErrNotFound = errors.New("task not found")
)

type (
	// Repository stores task documents. Queries filter by the owning user
	// and order by due date ascending.
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		GetTaskByID(ctx context.Context, id string) (Task, error)
		QueryTasksByUser(ctx context.Context, userID string) ([]Task, error)
		QueryTasksBySchedule(ctx context.Context, userID, scheduleID string) ([]Task, error)
		QueryTasksByStatus(ctx context.Context, userID string, status Status) ([]Task, error)
		QueryTasksByDateRange(ctx context.Context, userID string, from, to time.Time) ([]Task, error)
		// QueryTasksWithReminderBetween scans across users; the reminder
		// sweep is its only caller.
		QueryTasksWithReminderBetween(ctx context.Context, from, to time.Time) ([]Task, error)
		CountPendingTasks(ctx context.Context, userID string) (int, error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		DeleteTask(ctx context.Context, id string) error
		DeleteTasksByUser(ctx context.Context, userID string) error
	}

	Service struct {
		repo      Repository
		reminders *reminder.Scheduler
	}
)

func NewService(repo Repository, reminders *reminder.Scheduler) *Service {
	return &Service{repo: repo, reminders: reminders}
}

// Add creates the task with status PENDING and schedules its reminder when
// one is set in the future. Reminder scheduling is best effort.
func (svc *Service) Add(ctx context.Context, sess core.Session, nt NewTask) (Task, error) {
	now := core.NowFunc().UTC()
	t := Task{
		UserID:      sess.UserID,
		ScheduleID:  nt.ScheduleID,
		Title:       nt.Title,
		Description: nt.Description,
		DueDate:     nt.DueDate,
		Priority:    nt.Priority,
		Status:      StatusPending,
		ReminderAt:  nt.ReminderAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t, err := svc.repo.CreateTask(ctx, t)
	if err != nil {
		return Task{}, err
	}

	if t.ReminderAt != nil {
		svc.reminders.ScheduleTaskReminder(t.ID, t.Title, *t.ReminderAt, "")
	}
	return t, nil
}

func (svc *Service) Get(ctx context.Context, sess core.Session, id string) (Task, error) {
	t, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if t.UserID != sess.UserID {
		return Task{}, ErrNotFound
	}
	return t, nil
}

// Update overwrites the task and re-arms its reminder: the old job is
// cancelled first, then a new one is scheduled when a future reminder remains.
func (svc *Service) Update(ctx context.Context, sess core.Session, id string, ut UpdateTask) (Task, error) {
	t, err := svc.Get(ctx, sess, id)
	if err != nil {
		return Task{}, err
	}

	t.Title = ut.Title
	t.Description = ut.Description
	t.ScheduleID = ut.ScheduleID
	t.DueDate = ut.DueDate
	t.Priority = ut.Priority
	t.Status = ut.Status
	t.ReminderAt = ut.ReminderAt
	t.UpdatedAt = core.NowFunc().UTC()

	t, err = svc.repo.UpdateTask(ctx, t)
	if err != nil {
		return Task{}, err
	}

	svc.reminders.CancelTaskReminder(t.ID)
	if t.ReminderAt != nil {
		svc.reminders.ScheduleTaskReminder(t.ID, t.Title, *t.ReminderAt, "")
	}
	return t, nil
}

func (svc *Service) Delete(ctx context.Context, sess core.Session, id string) error {
	if _, err := svc.Get(ctx, sess, id); err != nil {
		return err
	}
	if err := svc.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	svc.reminders.CancelTaskReminder(id)
	return nil
}

func (svc *Service) List(ctx context.Context, sess core.Session) ([]Task, error) {
	return svc.repo.QueryTasksByUser(ctx, sess.UserID)
}

func (svc *Service) ListBySchedule(ctx context.Context, sess core.Session, scheduleID string) ([]Task, error) {
	return svc.repo.QueryTasksBySchedule(ctx, sess.UserID, scheduleID)
}

func (svc *Service) ListByStatus(ctx context.Context, sess core.Session, status Status) ([]Task, error) {
	return svc.repo.QueryTasksByStatus(ctx, sess.UserID, status)
}

// ListUpcoming lists tasks due within the next `days` days.
func (svc *Service) ListUpcoming(ctx context.Context, sess core.Session, days int) ([]Task, error) {
	if days <= 0 {
		days = 7
	}
	from := core.NowFunc()
	to := from.Add(time.Duration(days) * 24 * time.Hour)
	return svc.repo.QueryTasksByDateRange(ctx, sess.UserID, from, to)
}

func (svc *Service) PendingCount(ctx context.Context, sess core.Session) (int, error) {
	return svc.repo.CountPendingTasks(ctx, sess.UserID)
}
