package reminder

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/oscardm22/estuguia/core"
)

const defaultMessage = "No olvides completar esta tarea"

type (
	// Job is the payload a deferred reminder carries until it fires.
	Job struct {
		TaskID  string
		Title   string
		Message string
	}

	// Runner is the deferred-work facility: run a payload after a delay,
	// tagged for later cancellation. Jobs survive nothing beyond what the
	// underlying runner guarantees; its retry policy is opaque.
	Runner interface {
		Enqueue(tag string, delay time.Duration, job Job) error
		Cancel(tag string)
		CancelAll()
	}

	// Notification is a user-visible message. Key is deterministic per task
	// so re-posting replaces rather than duplicates.
	Notification struct {
		Key    uint32
		TaskID string
		Title  string
		Body   string
	}

	// Notifier presents notifications. Implementations create their delivery
	// channel lazily and idempotently before the first post.
	Notifier interface {
		Post(n Notification) error
	}

	// Scheduler turns a task's reminder instant into exactly one deferred
	// notification job. It is fire-and-forget and at-most-once: failures to
	// enqueue or post are logged, never surfaced.
	Scheduler struct {
		runner   Runner
		notifier Notifier
		logger   core.Logger
	}
)

func NewScheduler(runner Runner, notifier Notifier, logger core.Logger) *Scheduler {
	return &Scheduler{runner: runner, notifier: notifier, logger: logger}
}

// NotificationKey hashes a task id into the stable key its notification
// posts under.
func NotificationKey(taskID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(taskID))
	return h.Sum32()
}

// ScheduleTaskReminder enqueues one deferred job for the task, to fire when
// the target instant arrives. Past or immediate instants are silently
// dropped; there is no backfill and no immediate-fire fallback. Callers
// editing a reminder must CancelTaskReminder first.
func (s *Scheduler) ScheduleTaskReminder(taskID, taskTitle string, at time.Time, message string) {
	delay := at.Sub(core.NowFunc())
	if delay <= 0 {
		return
	}
	if message == "" {
		message = defaultMessage
	}

	job := Job{
		TaskID:  taskID,
		Title:   "Recordatorio: " + taskTitle,
		Message: message,
	}
	if err := s.runner.Enqueue(taskID, delay, job); err != nil {
		s.logger.Warn(fmt.Sprintf("enqueueing reminder for task %s: %v", taskID, err), err)
	}
}

// CancelTaskReminder cancels any pending job tagged with the task id.
// Safe to call when nothing is pending.
func (s *Scheduler) CancelTaskReminder(taskID string) {
	s.runner.Cancel(taskID)
}

// CancelAll cancels every pending job; used by the account-deletion cascade.
func (s *Scheduler) CancelAll() {
	s.runner.CancelAll()
}

// Deliver posts the notification for a fired job. Runners call this as the
// job body; failures are swallowed after logging.
func (s *Scheduler) Deliver(job Job) {
	n := Notification{
		Key:    NotificationKey(job.TaskID),
		TaskID: job.TaskID,
		Title:  job.Title,
		Body:   job.Message,
	}
	if err := s.notifier.Post(n); err != nil {
		s.logger.Warn(fmt.Sprintf("posting reminder for task %s: %v", job.TaskID, err), err)
	}
}
