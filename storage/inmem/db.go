// Package inmemdb provides in-memory document repositories, used by tests
// and local development.
package inmemdb

import (
	"sync"

	"github.com/oscardm22/estuguia/core/schedule"
	"github.com/oscardm22/estuguia/core/task"
	"github.com/oscardm22/estuguia/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	scheduleTable struct {
		mutex sync.RWMutex
		table map[string]*schedule.Schedule
	}

	taskTable struct {
		mutex sync.RWMutex
		table map[string]*task.Task
	}

	DB struct {
		user     *userTable
		schedule *scheduleTable
		task     *taskTable
	}
)

func Open() *DB {
	return &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		schedule: &scheduleTable{table: make(map[string]*schedule.Schedule)},
		task:     &taskTable{table: make(map[string]*task.Task)},
	}
}
