package task

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/reminder"
)

type fakeRepository struct {
	tasks  []Task
	nextID int
}

func (r *fakeRepository) CreateTask(_ context.Context, t Task) (Task, error) {
	r.nextID++
	t.ID = "task-" + strconv.Itoa(r.nextID)
	r.tasks = append(r.tasks, t)
	return t, nil
}

func (r *fakeRepository) GetTaskByID(_ context.Context, id string) (Task, error) {
	for _, t := range r.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return Task{}, ErrNotFound
}

func (r *fakeRepository) QueryTasksByUser(_ context.Context, userID string) ([]Task, error) {
	var out []Task
	for _, t := range r.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeRepository) QueryTasksBySchedule(_ context.Context, userID, scheduleID string) ([]Task, error) {
	var out []Task
	for _, t := range r.tasks {
		if t.UserID == userID && t.ScheduleID == scheduleID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeRepository) QueryTasksByStatus(_ context.Context, userID string, status Status) ([]Task, error) {
	var out []Task
	for _, t := range r.tasks {
		if t.UserID == userID && t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeRepository) QueryTasksByDateRange(_ context.Context, userID string, from, to time.Time) ([]Task, error) {
	var out []Task
	for _, t := range r.tasks {
		if t.UserID == userID && !t.DueDate.Before(from) && !t.DueDate.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeRepository) QueryTasksWithReminderBetween(_ context.Context, from, to time.Time) ([]Task, error) {
	var out []Task
	for _, t := range r.tasks {
		if t.ReminderAt != nil && t.ReminderAt.After(from) && !t.ReminderAt.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeRepository) CountPendingTasks(_ context.Context, userID string) (int, error) {
	count := 0
	for _, t := range r.tasks {
		if t.UserID == userID && t.Status == StatusPending {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepository) UpdateTask(_ context.Context, t Task) (Task, error) {
	for i := range r.tasks {
		if r.tasks[i].ID == t.ID {
			r.tasks[i] = t
			return t, nil
		}
	}
	return Task{}, ErrNotFound
}

func (r *fakeRepository) DeleteTask(_ context.Context, id string) error {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeRepository) DeleteTasksByUser(_ context.Context, userID string) error {
	var kept []Task
	for _, t := range r.tasks {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	r.tasks = kept
	return nil
}

type enqueued struct {
	tag   string
	delay time.Duration
}

type fakeRunner struct {
	jobs    []enqueued
	cancels []string
}

func (r *fakeRunner) Enqueue(tag string, delay time.Duration, _ reminder.Job) error {
	r.jobs = append(r.jobs, enqueued{tag: tag, delay: delay})
	return nil
}

func (r *fakeRunner) Cancel(tag string) { r.cancels = append(r.cancels, tag) }
func (r *fakeRunner) CancelAll()        {}

type nopNotifier struct{}

func (nopNotifier) Post(reminder.Notification) error { return nil }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) (*Service, *fakeRepository, *fakeRunner) {
	t.Helper()
	repo := &fakeRepository{}
	runner := &fakeRunner{}
	reminders := reminder.NewScheduler(runner, nopNotifier{}, nopLogger{})
	return NewService(repo, reminders), repo, runner
}

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = orig })
}

func TestServiceAdd(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)
	svc, _, runner := setup(t)
	ctx := context.Background()
	sess := core.Session{UserID: "u1"}

	at := now.Add(time.Hour)
	tsk, err := svc.Add(ctx, sess, NewTask{
		Title:      "Ensayo de historia",
		DueDate:    now.Add(48 * time.Hour),
		Priority:   PriorityHigh,
		ReminderAt: &at,
	})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if tsk.Status != StatusPending {
		t.Errorf("Status = %v; want PENDING", tsk.Status)
	}
	if tsk.UserID != "u1" {
		t.Errorf("UserID = %v; want u1", tsk.UserID)
	}
	if len(runner.jobs) != 1 {
		t.Fatalf("enqueued %d reminder jobs; want 1", len(runner.jobs))
	}
	if runner.jobs[0].tag != tsk.ID || runner.jobs[0].delay != time.Hour {
		t.Errorf("job = %+v; want tag %q delay 1h", runner.jobs[0], tsk.ID)
	}
}

func TestServiceAdd_noReminder(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)
	svc, _, runner := setup(t)

	_, err := svc.Add(context.Background(), core.Session{UserID: "u1"}, NewTask{
		Title:   "Sin recordatorio",
		DueDate: now.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if len(runner.jobs) != 0 {
		t.Errorf("enqueued %d jobs; want 0", len(runner.jobs))
	}
}

func TestServiceUpdate_reArmsReminder(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)
	svc, _, runner := setup(t)
	ctx := context.Background()
	sess := core.Session{UserID: "u1"}

	at := now.Add(time.Hour)
	tsk, err := svc.Add(ctx, sess, NewTask{Title: "Tarea", DueDate: now.Add(24 * time.Hour), ReminderAt: &at})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	later := now.Add(2 * time.Hour)
	tsk, err = svc.Update(ctx, sess, tsk.ID, UpdateTask{
		Title:      "Tarea",
		DueDate:    tsk.DueDate,
		Priority:   PriorityMedium,
		Status:     StatusInProgress,
		ReminderAt: &later,
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	// cancel first, then a fresh job with the new delay
	if len(runner.cancels) != 1 || runner.cancels[0] != tsk.ID {
		t.Errorf("cancels = %v; want [%s]", runner.cancels, tsk.ID)
	}
	if len(runner.jobs) != 2 || runner.jobs[1].delay != 2*time.Hour {
		t.Errorf("jobs = %+v; want second with 2h delay", runner.jobs)
	}
}

func TestServiceUpdate_removedReminderStaysCancelled(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)
	svc, _, runner := setup(t)
	ctx := context.Background()
	sess := core.Session{UserID: "u1"}

	at := now.Add(time.Hour)
	tsk, err := svc.Add(ctx, sess, NewTask{Title: "Tarea", DueDate: now.Add(24 * time.Hour), ReminderAt: &at})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if _, err = svc.Update(ctx, sess, tsk.ID, UpdateTask{
		Title:    "Tarea",
		DueDate:  tsk.DueDate,
		Priority: PriorityMedium,
		Status:   StatusPending,
	}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if len(runner.cancels) != 1 {
		t.Errorf("cancels = %v; want one", runner.cancels)
	}
	if len(runner.jobs) != 1 {
		t.Errorf("jobs = %d; removed reminder must not re-enqueue", len(runner.jobs))
	}
}

func TestServiceDelete_cancelsReminder(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)
	svc, repo, runner := setup(t)
	ctx := context.Background()
	sess := core.Session{UserID: "u1"}

	at := now.Add(time.Hour)
	tsk, err := svc.Add(ctx, sess, NewTask{Title: "Tarea", DueDate: now.Add(24 * time.Hour), ReminderAt: &at})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if err = svc.Delete(ctx, sess, tsk.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if len(repo.tasks) != 0 {
		t.Errorf("task not deleted")
	}
	if len(runner.cancels) != 1 || runner.cancels[0] != tsk.ID {
		t.Errorf("cancels = %v; want [%s]", runner.cancels, tsk.ID)
	}
}

func TestServiceGet_ownership(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)
	svc, _, _ := setup(t)
	ctx := context.Background()

	tsk, err := svc.Add(ctx, core.Session{UserID: "owner"}, NewTask{Title: "Tarea", DueDate: now})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if _, err = svc.Get(ctx, core.Session{UserID: "intruder"}, tsk.ID); err != ErrNotFound {
		t.Errorf("Get() by non-owner error = %v; want ErrNotFound", err)
	}
}

func TestServiceListUpcoming(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)
	svc, _, _ := setup(t)
	ctx := context.Background()
	sess := core.Session{UserID: "u1"}

	addDue := func(title string, due time.Time) {
		if _, err := svc.Add(ctx, sess, NewTask{Title: title, DueDate: due}); err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
	}
	addDue("mañana", now.Add(24*time.Hour))
	addDue("en seis días", now.Add(6*24*time.Hour))
	addDue("en diez días", now.Add(10*24*time.Hour))

	// default window is 7 days
	tasks, err := svc.ListUpcoming(ctx, sess, 0)
	if err != nil {
		t.Fatalf("ListUpcoming() failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("ListUpcoming(0) = %d tasks; want 2", len(tasks))
	}

	tasks, err = svc.ListUpcoming(ctx, sess, 14)
	if err != nil {
		t.Fatalf("ListUpcoming() failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Errorf("ListUpcoming(14) = %d tasks; want 3", len(tasks))
	}
}

func TestServicePendingCount(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)
	svc, _, _ := setup(t)
	ctx := context.Background()
	sess := core.Session{UserID: "u1"}

	tsk, err := svc.Add(ctx, sess, NewTask{Title: "Primera", DueDate: now})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if _, err = svc.Add(ctx, sess, NewTask{Title: "Segunda", DueDate: now}); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if _, err = svc.Update(ctx, sess, tsk.ID, UpdateTask{
		Title:    "Primera",
		DueDate:  now,
		Priority: PriorityMedium,
		Status:   StatusCompleted,
	}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	count, err := svc.PendingCount(ctx, sess)
	if err != nil {
		t.Fatalf("PendingCount() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("PendingCount() = %d; want 1", count)
	}
}
