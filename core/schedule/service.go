package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/oscardm22/estuguia/core"
)

var (
	// errors
	ErrNotFound = errors.New("schedule not found")
)

type (
	// Repository stores schedule documents. List results come back ordered
	// the way the store's queries order them; services re-sort in memory
	// where the display order differs.
	Repository interface {
		CreateSchedule(ctx context.Context, sch Schedule) (Schedule, error)
		GetScheduleByID(ctx context.Context, id string) (Schedule, error)
		QuerySchedulesByUser(ctx context.Context, userID string) ([]Schedule, error)
		QuerySchedulesByDay(ctx context.Context, userID string, dayOfWeek int) ([]Schedule, error)
		QuerySchedulesByTurn(ctx context.Context, userID string, turn Turn) ([]Schedule, error)
		QuerySchedulesByDayAndTurn(ctx context.Context, userID string, dayOfWeek int, turn Turn) ([]Schedule, error)
		UpdateSchedule(ctx context.Context, sch Schedule) (Schedule, error)
		DeleteSchedule(ctx context.Context, id string) error
		DeleteSchedulesByUser(ctx context.Context, userID string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Add(ctx context.Context, sess core.Session, ns NewSchedule) (Schedule, error) {
	sch := Schedule{
		UserID:     sess.UserID,
		CourseName: ns.CourseName,
		CourseCode: ns.CourseCode,
		DayOfWeek:  ns.DayOfWeek,
		StartTime:  ns.StartTime,
		EndTime:    ns.EndTime,
		Turn:       DeriveTurn(ns.StartTime),
		Classroom:  ns.Classroom,
		Professor:  ns.Professor,
		Color:      ns.Color,
		CreatedAt:  core.NowFunc().UTC(),
	}
	return svc.repo.CreateSchedule(ctx, sch)
}

func (svc *Service) Get(ctx context.Context, sess core.Session, id string) (Schedule, error) {
	sch, err := svc.repo.GetScheduleByID(ctx, id)
	if err != nil {
		return Schedule{}, err
	}
	if sch.UserID != sess.UserID {
		return Schedule{}, ErrNotFound
	}
	return sch, nil
}

// Update overwrites the whole document; there is no concurrency check.
func (svc *Service) Update(ctx context.Context, sess core.Session, id string, us UpdateSchedule) (Schedule, error) {
	sch, err := svc.Get(ctx, sess, id)
	if err != nil {
		return Schedule{}, err
	}

	sch.CourseName = us.CourseName
	sch.CourseCode = us.CourseCode
	sch.DayOfWeek = us.DayOfWeek
	sch.StartTime = us.StartTime
	sch.EndTime = us.EndTime
	sch.Turn = DeriveTurn(us.StartTime)
	sch.Classroom = us.Classroom
	sch.Professor = us.Professor
	sch.Color = us.Color

	return svc.repo.UpdateSchedule(ctx, sch)
}

func (svc *Service) Delete(ctx context.Context, sess core.Session, id string) error {
	if _, err := svc.Get(ctx, sess, id); err != nil {
		return err
	}
	return svc.repo.DeleteSchedule(ctx, id)
}

func (svc *Service) List(ctx context.Context, sess core.Session) ([]Schedule, error) {
	schedules, err := svc.repo.QuerySchedulesByUser(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	Sort(schedules)
	return schedules, nil
}

func (svc *Service) ListByDay(ctx context.Context, sess core.Session, dayOfWeek int) ([]Schedule, error) {
	return svc.repo.QuerySchedulesByDay(ctx, sess.UserID, dayOfWeek)
}

func (svc *Service) ListByTurn(ctx context.Context, sess core.Session, turn Turn) ([]Schedule, error) {
	return svc.repo.QuerySchedulesByTurn(ctx, sess.UserID, turn)
}

func (svc *Service) ListByDayAndTurn(ctx context.Context, sess core.Session, dayOfWeek int, turn Turn) ([]Schedule, error) {
	return svc.repo.QuerySchedulesByDayAndTurn(ctx, sess.UserID, dayOfWeek, turn)
}

// Today lists the session user's schedules for the current weekday.
// Saturday and Sunday map outside 1-5 and always come back empty.
func (svc *Service) Today(ctx context.Context, sess core.Session) ([]Schedule, error) {
	day := int(core.NowFunc().Weekday()) // Sunday = 0
	if day == 0 {
		day = 7
	}
	if day > 5 {
		return []Schedule{}, nil
	}
	return svc.ListByDay(ctx, sess, day)
}

// CurrentClock formats a time as the "HH:MM" instant used in next-class
// comparisons.
func CurrentClock(t time.Time) string {
	return t.Format("15:04")
}
