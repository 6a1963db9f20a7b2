package firestoredb

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"

	"github.com/oscardm22/estuguia/core/task"
)

// taskDoc stores dates as epoch millis; a zero reminderTime means none set.
type taskDoc struct {
	ID          string `firestore:"id"`
	UserID      string `firestore:"userId"`
	ScheduleID  string `firestore:"scheduleId"`
	Title       string `firestore:"title"`
	Description string `firestore:"description"`
	DueDate     int64  `firestore:"dueDate"`
	Priority    string `firestore:"priority"`
	Status      string `firestore:"status"`
	ReminderAt  int64  `firestore:"reminderTime"`
	CreatedAt   int64  `firestore:"createdAt"`
	UpdatedAt   int64  `firestore:"updatedAt"`
}

func millis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

func fromMillis(ms int64) time.Time {
	return time.Unix(0, ms*int64(time.Millisecond)).UTC()
}

func toTaskDoc(t task.Task) taskDoc {
	doc := taskDoc{
		ID:          t.ID,
		UserID:      t.UserID,
		ScheduleID:  t.ScheduleID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     millis(t.DueDate),
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   millis(t.CreatedAt),
		UpdatedAt:   millis(t.UpdatedAt),
	}
	if t.ReminderAt != nil {
		doc.ReminderAt = millis(*t.ReminderAt)
	}
	return doc
}

func (doc taskDoc) toTask() task.Task {
	t := task.Task{
		ID:          doc.ID,
		UserID:      doc.UserID,
		ScheduleID:  doc.ScheduleID,
		Title:       doc.Title,
		Description: doc.Description,
		DueDate:     fromMillis(doc.DueDate),
		Priority:    task.Priority(doc.Priority),
		Status:      task.Status(doc.Status),
		CreatedAt:   fromMillis(doc.CreatedAt),
		UpdatedAt:   fromMillis(doc.UpdatedAt),
	}
	if doc.ReminderAt > 0 {
		at := fromMillis(doc.ReminderAt)
		t.ReminderAt = &at
	}
	return t
}

type taskRepository struct {
	client *firestore.Client
}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository(client *firestore.Client) task.Repository {
	return &taskRepository{client: client}
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	ref := repo.client.Collection(tasksCollection).NewDoc()
	t.ID = ref.ID
	if _, err := ref.Set(ctx, toTaskDoc(t)); err != nil {
		return task.Task{}, errors.Wrap(wireErr(err), "creating task document")
	}
	return t, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	snap, err := repo.client.Collection(tasksCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(wireErr(err), "getting task document")
	}

	var doc taskDoc
	if err = snap.DataTo(&doc); err != nil {
		return task.Task{}, errors.Wrap(err, "decoding task document")
	}
	return doc.toTask(), nil
}

func (repo *taskRepository) QueryTasksByUser(ctx context.Context, userID string) ([]task.Task, error) {
	q := repo.client.Collection(tasksCollection).
		Where("userId", "==", userID).
		OrderBy("dueDate", firestore.Asc)
	return repo.query(ctx, q)
}

func (repo *taskRepository) QueryTasksBySchedule(ctx context.Context, userID, scheduleID string) ([]task.Task, error) {
	q := repo.client.Collection(tasksCollection).
		Where("userId", "==", userID).
		Where("scheduleId", "==", scheduleID).
		OrderBy("dueDate", firestore.Asc)
	return repo.query(ctx, q)
}

func (repo *taskRepository) QueryTasksByStatus(ctx context.Context, userID string, status task.Status) ([]task.Task, error) {
	q := repo.client.Collection(tasksCollection).
		Where("userId", "==", userID).
		Where("status", "==", string(status)).
		OrderBy("dueDate", firestore.Asc)
	return repo.query(ctx, q)
}

func (repo *taskRepository) QueryTasksByDateRange(ctx context.Context, userID string, from, to time.Time) ([]task.Task, error) {
	q := repo.client.Collection(tasksCollection).
		Where("userId", "==", userID).
		Where("dueDate", ">=", millis(from)).
		Where("dueDate", "<=", millis(to)).
		OrderBy("dueDate", firestore.Asc)
	return repo.query(ctx, q)
}

func (repo *taskRepository) QueryTasksWithReminderBetween(ctx context.Context, from, to time.Time) ([]task.Task, error) {
	q := repo.client.Collection(tasksCollection).
		Where("reminderTime", ">", millis(from)).
		Where("reminderTime", "<=", millis(to))
	return repo.query(ctx, q)
}

func (repo *taskRepository) CountPendingTasks(ctx context.Context, userID string) (int, error) {
	q := repo.client.Collection(tasksCollection).
		Where("userId", "==", userID).
		Where("status", "==", string(task.StatusPending))

	count := 0
	it := q.Documents(ctx)
	defer it.Stop()
	for {
		_, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, errors.Wrap(wireErr(err), "counting pending tasks")
		}
		count++
	}
	return count, nil
}

func (repo *taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	ref := repo.client.Collection(tasksCollection).Doc(t.ID)
	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(wireErr(err), "getting task document")
	}

	if _, err := ref.Set(ctx, toTaskDoc(t)); err != nil {
		return task.Task{}, errors.Wrap(wireErr(err), "updating task document")
	}
	return t, nil
}

func (repo *taskRepository) DeleteTask(ctx context.Context, id string) error {
	if _, err := repo.client.Collection(tasksCollection).Doc(id).Delete(ctx); err != nil {
		return errors.Wrap(wireErr(err), "deleting task document")
	}
	return nil
}

func (repo *taskRepository) DeleteTasksByUser(ctx context.Context, userID string) error {
	q := repo.client.Collection(tasksCollection).Where("userId", "==", userID)
	return deleteAll(ctx, repo.client, q)
}

func (repo *taskRepository) query(ctx context.Context, q firestore.Query) ([]task.Task, error) {
	tasks := make([]task.Task, 0)

	it := q.Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(wireErr(err), "querying task documents")
		}

		var doc taskDoc
		if err = snap.DataTo(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding task document")
		}
		tasks = append(tasks, doc.toTask())
	}
	return tasks, nil
}
