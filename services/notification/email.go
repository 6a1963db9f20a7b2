package notifsvc

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/reminder"
	"github.com/oscardm22/estuguia/core/task"
	"github.com/oscardm22/estuguia/core/user"
)

const lookupTimeout = 10 * time.Second

// EmailNotifier delivers reminders to the task owner's inbox. It resolves
// the recipient from the task and user documents at post time; a task that
// vanished since scheduling drops the notification.
type EmailNotifier struct {
	tasks   task.Repository
	users   user.Repository
	mailSvc core.EmailService
}

var _ reminder.Notifier = (*EmailNotifier)(nil)

func NewEmailNotifier(tasks task.Repository, users user.Repository, mailSvc core.EmailService) *EmailNotifier {
	return &EmailNotifier{tasks: tasks, users: users, mailSvc: mailSvc}
}

func (n *EmailNotifier) Post(notif reminder.Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	t, err := n.tasks.GetTaskByID(ctx, notif.TaskID)
	if err != nil {
		if errors.Cause(err) == task.ErrNotFound {
			return nil // task deleted since scheduling
		}
		return errors.Wrap(err, "finding task")
	}
	usr, err := n.users.GetUserByID(ctx, t.UserID)
	if err != nil {
		return errors.Wrap(err, "finding task owner")
	}

	n.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: usr.DisplayName(), Address: usr.Email}},
		Subject:     notif.Title,
		TextContent: notif.Body,
	})
	return nil
}
