package workqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/reminder"
	"github.com/oscardm22/estuguia/core/task"
)

// ReminderSweeper periodically re-arms reminders falling inside the next
// sweep window. The timer runner loses its jobs on restart and offers no
// delivery guarantee; the sweep keeps scheduling idempotent (cancel-by-tag
// then enqueue) without ever backfilling instants already past.
type ReminderSweeper struct {
	tasks     task.Repository
	reminders *reminder.Scheduler
	window    time.Duration
	logger    core.Logger
}

func NewReminderSweeper(tasks task.Repository, reminders *reminder.Scheduler, window time.Duration, logger core.Logger) *ReminderSweeper {
	return &ReminderSweeper{tasks: tasks, reminders: reminders, window: window, logger: logger}
}

const sweepQueryTimeout = 30 * time.Second

// Run performs one sweep pass. Registered with a CronScheduler job.
func (s *ReminderSweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepQueryTimeout)
	defer cancel()

	now := core.NowFunc()
	tasks, err := s.tasks.QueryTasksWithReminderBetween(ctx, now, now.Add(s.window))
	if err != nil {
		s.logger.Warn(fmt.Sprintf("sweeping reminders: %v", err), err)
		return
	}

	for _, t := range tasks {
		if t.ReminderAt == nil || t.Status == task.StatusCompleted {
			continue
		}
		s.reminders.CancelTaskReminder(t.ID)
		s.reminders.ScheduleTaskReminder(t.ID, t.Title, *t.ReminderAt, "")
	}
}
