package firestoredb

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"

	"github.com/oscardm22/estuguia/core/schedule"
)

type scheduleDoc struct {
	ID         string `firestore:"id"`
	UserID     string `firestore:"userId"`
	CourseName string `firestore:"courseName"`
	CourseCode string `firestore:"courseCode"`
	DayOfWeek  int    `firestore:"dayOfWeek"`
	StartTime  string `firestore:"startTime"`
	EndTime    string `firestore:"endTime"`
	Turn       string `firestore:"turn"`
	Classroom  string `firestore:"classroom"`
	Professor  string `firestore:"professor"`
	Color      int    `firestore:"color"`
	CreatedAt  int64  `firestore:"createdAt"`
}

func toScheduleDoc(sch schedule.Schedule) scheduleDoc {
	return scheduleDoc{
		ID:         sch.ID,
		UserID:     sch.UserID,
		CourseName: sch.CourseName,
		CourseCode: sch.CourseCode,
		DayOfWeek:  sch.DayOfWeek,
		StartTime:  sch.StartTime,
		EndTime:    sch.EndTime,
		Turn:       string(sch.Turn),
		Classroom:  sch.Classroom,
		Professor:  sch.Professor,
		Color:      sch.Color,
		CreatedAt:  sch.CreatedAt.UnixNano() / int64(time.Millisecond),
	}
}

func (doc scheduleDoc) toSchedule() schedule.Schedule {
	return schedule.Schedule{
		ID:         doc.ID,
		UserID:     doc.UserID,
		CourseName: doc.CourseName,
		CourseCode: doc.CourseCode,
		DayOfWeek:  doc.DayOfWeek,
		StartTime:  doc.StartTime,
		EndTime:    doc.EndTime,
		Turn:       schedule.Turn(doc.Turn),
		Classroom:  doc.Classroom,
		Professor:  doc.Professor,
		Color:      doc.Color,
		CreatedAt:  time.Unix(0, doc.CreatedAt*int64(time.Millisecond)).UTC(),
	}
}

type scheduleRepository struct {
	client *firestore.Client
}

var _ schedule.Repository = (*scheduleRepository)(nil)

func NewScheduleRepository(client *firestore.Client) schedule.Repository {
	return &scheduleRepository{client: client}
}

func (repo *scheduleRepository) CreateSchedule(ctx context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	ref := repo.client.Collection(schedulesCollection).NewDoc()
	sch.ID = ref.ID
	if _, err := ref.Set(ctx, toScheduleDoc(sch)); err != nil {
		return schedule.Schedule{}, errors.Wrap(wireErr(err), "creating schedule document")
	}
	return sch, nil
}

func (repo *scheduleRepository) GetScheduleByID(ctx context.Context, id string) (schedule.Schedule, error) {
	snap, err := repo.client.Collection(schedulesCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return schedule.Schedule{}, schedule.ErrNotFound
		}
		return schedule.Schedule{}, errors.Wrap(wireErr(err), "getting schedule document")
	}

	var doc scheduleDoc
	if err = snap.DataTo(&doc); err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "decoding schedule document")
	}
	return doc.toSchedule(), nil
}

func (repo *scheduleRepository) QuerySchedulesByUser(ctx context.Context, userID string) ([]schedule.Schedule, error) {
	q := repo.client.Collection(schedulesCollection).
		Where("userId", "==", userID).
		OrderBy("dayOfWeek", firestore.Asc).
		OrderBy("startTime", firestore.Asc)
	return repo.query(ctx, q)
}

func (repo *scheduleRepository) QuerySchedulesByDay(ctx context.Context, userID string, dayOfWeek int) ([]schedule.Schedule, error) {
	q := repo.client.Collection(schedulesCollection).
		Where("userId", "==", userID).
		Where("dayOfWeek", "==", dayOfWeek).
		OrderBy("startTime", firestore.Asc)
	return repo.query(ctx, q)
}

func (repo *scheduleRepository) QuerySchedulesByTurn(ctx context.Context, userID string, turn schedule.Turn) ([]schedule.Schedule, error) {
	q := repo.client.Collection(schedulesCollection).
		Where("userId", "==", userID).
		Where("turn", "==", string(turn)).
		OrderBy("dayOfWeek", firestore.Asc).
		OrderBy("startTime", firestore.Asc)
	return repo.query(ctx, q)
}

func (repo *scheduleRepository) QuerySchedulesByDayAndTurn(ctx context.Context, userID string, dayOfWeek int, turn schedule.Turn) ([]schedule.Schedule, error) {
	q := repo.client.Collection(schedulesCollection).
		Where("userId", "==", userID).
		Where("dayOfWeek", "==", dayOfWeek).
		Where("turn", "==", string(turn)).
		OrderBy("startTime", firestore.Asc)
	return repo.query(ctx, q)
}

func (repo *scheduleRepository) UpdateSchedule(ctx context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	ref := repo.client.Collection(schedulesCollection).Doc(sch.ID)
	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return schedule.Schedule{}, schedule.ErrNotFound
		}
		return schedule.Schedule{}, errors.Wrap(wireErr(err), "getting schedule document")
	}

	if _, err := ref.Set(ctx, toScheduleDoc(sch)); err != nil {
		return schedule.Schedule{}, errors.Wrap(wireErr(err), "updating schedule document")
	}
	return sch, nil
}

func (repo *scheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	if _, err := repo.client.Collection(schedulesCollection).Doc(id).Delete(ctx); err != nil {
		return errors.Wrap(wireErr(err), "deleting schedule document")
	}
	return nil
}

// DeleteSchedulesByUser removes the user's schedules in batches. Partial
// failure leaves earlier batches deleted; the caller logs and carries on.
func (repo *scheduleRepository) DeleteSchedulesByUser(ctx context.Context, userID string) error {
	q := repo.client.Collection(schedulesCollection).Where("userId", "==", userID)
	return deleteAll(ctx, repo.client, q)
}

func (repo *scheduleRepository) query(ctx context.Context, q firestore.Query) ([]schedule.Schedule, error) {
	schedules := make([]schedule.Schedule, 0)

	it := q.Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(wireErr(err), "querying schedule documents")
		}

		var doc scheduleDoc
		if err = snap.DataTo(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding schedule document")
		}
		schedules = append(schedules, doc.toSchedule())
	}
	return schedules, nil
}

// deleteAll deletes every document matched by q in a single batch per page.
func deleteAll(ctx context.Context, client *firestore.Client, q firestore.Query) error {
	it := q.Documents(ctx)
	defer it.Stop()

	batch := client.Batch()
	n := 0
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return errors.Wrap(wireErr(err), "querying documents for deletion")
		}
		batch.Delete(snap.Ref)
		n++

		// Firestore caps batched writes at 500 operations.
		if n == 500 {
			if _, err = batch.Commit(ctx); err != nil {
				return errors.Wrap(wireErr(err), "committing delete batch")
			}
			batch = client.Batch()
			n = 0
		}
	}
	if n == 0 {
		return nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return errors.Wrap(wireErr(err), "committing delete batch")
	}
	return nil
}
