// Package account owns the delete-account cascade, the one operation that
// spans every aggregate.
package account

import (
	"context"
	"fmt"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/reminder"
	"github.com/oscardm22/estuguia/core/schedule"
	"github.com/oscardm22/estuguia/core/task"
	"github.com/oscardm22/estuguia/core/user"
)

type Service struct {
	identity  user.Identity
	users     user.Repository
	schedules schedule.Repository
	tasks     task.Repository
	reminders *reminder.Scheduler
	logger    core.Logger
}

func NewService(
	identity user.Identity,
	users user.Repository,
	schedules schedule.Repository,
	tasks task.Repository,
	reminders *reminder.Scheduler,
	logger core.Logger,
) *Service {
	return &Service{
		identity:  identity,
		users:     users,
		schedules: schedules,
		tasks:     tasks,
		reminders: reminders,
		logger:    logger,
	}
}

// Delete removes everything the user owns, then the identity record itself.
// Data deletion and reminder cancellation run first so that the account is at
// least unreachable if they partially fail; there is no transaction across
// the steps and no rollback. Failed data steps are logged and the cascade
// continues; the periodic reminder sweep plus the unreachable identity keep
// orphans inert until a later cleanup.
func (svc *Service) Delete(ctx context.Context, sess core.Session) error {
	if err := svc.schedules.DeleteSchedulesByUser(ctx, sess.UserID); err != nil {
		svc.logger.Error(fmt.Sprintf("deleting schedules for user %s: %v", sess.UserID, err), err)
	}
	if err := svc.tasks.DeleteTasksByUser(ctx, sess.UserID); err != nil {
		svc.logger.Error(fmt.Sprintf("deleting tasks for user %s: %v", sess.UserID, err), err)
	}

	// blanket cancel; per-task tags are gone with the tasks
	svc.reminders.CancelAll()

	if err := svc.users.DeleteUser(ctx, sess.UserID); err != nil {
		svc.logger.Error(fmt.Sprintf("deleting profile for user %s: %v", sess.UserID, err), err)
	}

	return svc.identity.DeleteAccount(ctx, sess.UserID)
}
