package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/oscardm22/estuguia/core/schedule"
)

type scheduleRepository struct {
	db *scheduleTable
}

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db.schedule}
}

func (repo *scheduleRepository) query(match func(schedule.Schedule) bool) []schedule.Schedule {
	schedules := make([]schedule.Schedule, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		if match(*s) {
			schedules = append(schedules, *s)
		}
	}
	// store queries order by day, then start time
	sort.SliceStable(schedules, func(i, j int) bool {
		if schedules[i].DayOfWeek != schedules[j].DayOfWeek {
			return schedules[i].DayOfWeek < schedules[j].DayOfWeek
		}
		return schedules[i].StartTime < schedules[j].StartTime
	})
	return schedules
}

func (repo *scheduleRepository) CreateSchedule(_ context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if sch.ID == "" {
		sch.ID = uuid.New().String()
	}
	repo.db.table[sch.ID] = &sch
	return sch, nil
}

func (repo *scheduleRepository) GetScheduleByID(_ context.Context, id string) (schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sch, ok := repo.db.table[id]; ok {
		return *sch, nil
	}
	return schedule.Schedule{}, schedule.ErrNotFound
}

func (repo *scheduleRepository) QuerySchedulesByUser(_ context.Context, userID string) ([]schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.query(func(s schedule.Schedule) bool { return s.UserID == userID }), nil
}

func (repo *scheduleRepository) QuerySchedulesByDay(_ context.Context, userID string, dayOfWeek int) ([]schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.query(func(s schedule.Schedule) bool {
		return s.UserID == userID && s.DayOfWeek == dayOfWeek
	}), nil
}

func (repo *scheduleRepository) QuerySchedulesByTurn(_ context.Context, userID string, turn schedule.Turn) ([]schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.query(func(s schedule.Schedule) bool {
		return s.UserID == userID && s.Turn == turn
	}), nil
}

func (repo *scheduleRepository) QuerySchedulesByDayAndTurn(_ context.Context, userID string, dayOfWeek int, turn schedule.Turn) ([]schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.query(func(s schedule.Schedule) bool {
		return s.UserID == userID && s.DayOfWeek == dayOfWeek && s.Turn == turn
	}), nil
}

func (repo *scheduleRepository) UpdateSchedule(_ context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[sch.ID]; !ok {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	repo.db.table[sch.ID] = &sch
	return sch, nil
}

func (repo *scheduleRepository) DeleteSchedule(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.table, id)
	return nil
}

func (repo *scheduleRepository) DeleteSchedulesByUser(_ context.Context, userID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, s := range repo.db.table {
		if s.UserID == userID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
