package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/oscardm22/estuguia/core/task"
)

type taskRepository struct {
	db *taskTable
}

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) query(match func(task.Task) bool) []task.Task {
	tasks := make([]task.Task, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		if match(*t) {
			tasks = append(tasks, *t)
		}
	}
	// store queries order by due date ascending
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
	return tasks
}

func (repo *taskRepository) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) GetTaskByID(_ context.Context, id string) (task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) QueryTasksByUser(_ context.Context, userID string) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.query(func(t task.Task) bool { return t.UserID == userID }), nil
}

func (repo *taskRepository) QueryTasksBySchedule(_ context.Context, userID, scheduleID string) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.query(func(t task.Task) bool {
		return t.UserID == userID && t.ScheduleID == scheduleID
	}), nil
}

func (repo *taskRepository) QueryTasksByStatus(_ context.Context, userID string, status task.Status) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.query(func(t task.Task) bool {
		return t.UserID == userID && t.Status == status
	}), nil
}

func (repo *taskRepository) QueryTasksByDateRange(_ context.Context, userID string, from, to time.Time) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.query(func(t task.Task) bool {
		return t.UserID == userID && !t.DueDate.Before(from) && !t.DueDate.After(to)
	}), nil
}

func (repo *taskRepository) QueryTasksWithReminderBetween(_ context.Context, from, to time.Time) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.query(func(t task.Task) bool {
		return t.ReminderAt != nil && t.ReminderAt.After(from) && !t.ReminderAt.After(to)
	}), nil
}

func (repo *taskRepository) CountPendingTasks(_ context.Context, userID string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return len(repo.query(func(t task.Task) bool {
		return t.UserID == userID && t.Status == task.StatusPending
	})), nil
}

func (repo *taskRepository) UpdateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[t.ID]; !ok {
		return task.Task{}, task.ErrNotFound
	}
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) DeleteTask(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.table, id)
	return nil
}

func (repo *taskRepository) DeleteTasksByUser(_ context.Context, userID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, t := range repo.db.table {
		if t.UserID == userID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
