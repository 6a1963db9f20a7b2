package workqueue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/reminder"
	"github.com/oscardm22/estuguia/core/task"
	inmemdb "github.com/oscardm22/estuguia/storage/inmem"
)

type recordingRunner struct {
	mu      sync.Mutex
	tags    []string
	cancels []string
}

func (r *recordingRunner) Enqueue(tag string, _ time.Duration, _ reminder.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tag)
	return nil
}

func (r *recordingRunner) Cancel(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels = append(r.cancels, tag)
}

func (r *recordingRunner) CancelAll() {}

type nopNotifier struct{}

func (nopNotifier) Post(reminder.Notification) error { return nil }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestReminderSweeperRun(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = orig })

	ctx := context.Background()
	repo := inmemdb.NewTaskRepository(inmemdb.Open())

	addTask := func(title string, reminderAt time.Time, status task.Status) task.Task {
		at := reminderAt
		tsk, err := repo.CreateTask(ctx, task.Task{
			UserID:     "u1",
			Title:      title,
			Status:     status,
			ReminderAt: &at,
		})
		if err != nil {
			t.Fatalf("CreateTask() failed: %v", err)
		}
		return tsk
	}

	inWindow := addTask("dentro de la ventana", now.Add(10*time.Minute), task.StatusPending)
	addTask("fuera de la ventana", now.Add(2*time.Hour), task.StatusPending)
	addTask("ya pasada", now.Add(-10*time.Minute), task.StatusPending)
	addTask("completada", now.Add(5*time.Minute), task.StatusCompleted)

	runner := &recordingRunner{}
	reminders := reminder.NewScheduler(runner, nopNotifier{}, nopLogger{})
	sweeper := NewReminderSweeper(repo, reminders, 15*time.Minute, nopLogger{})

	sweeper.Run()

	if len(runner.tags) != 1 || runner.tags[0] != inWindow.ID {
		t.Errorf("re-armed tags = %v; want only %s", runner.tags, inWindow.ID)
	}
	// cancel-by-tag precedes every enqueue, keeping the pass idempotent
	if len(runner.cancels) == 0 || runner.cancels[0] != inWindow.ID {
		t.Errorf("cancels = %v; want %s cancelled before re-arm", runner.cancels, inWindow.ID)
	}

	// a second pass re-arms the same job again, replacing not duplicating
	sweeper.Run()
	if len(runner.tags) != 2 {
		t.Errorf("tags after second pass = %v", runner.tags)
	}
}
