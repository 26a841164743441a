package app

import (
	"context"
	"fmt"
	"time"

	"household_reminder_bot/internal/domain/notify"
	"household_reminder_bot/internal/domain/recurrence"
	"household_reminder_bot/internal/domain/task"

	"github.com/sirupsen/logrus"
)

// TaskCoordinator reacts to task lifecycle events and keeps the reminder
// schedule consistent with the task store.
type TaskCoordinator struct {
	tasks     task.Repository
	prefs     notify.PreferenceRepository
	scheduler *ReminderScheduler
	logger    *logrus.Entry
	now       func() time.Time
}

func NewTaskCoordinator(tasks task.Repository, prefs notify.PreferenceRepository, scheduler *ReminderScheduler, logger *logrus.Entry) *TaskCoordinator {
	return &TaskCoordinator{
		tasks:     tasks,
		prefs:     prefs,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

// Create persists a new task and schedules its reminder when it is pending.
func (c *TaskCoordinator) Create(ctx context.Context, t *task.Task) error {
	c.normalize(t)
	if err := c.tasks.Create(ctx, t); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	if t.Active() {
		c.ScheduleReminder(ctx, t)
	}
	return nil
}

// Update persists task edits and recomputes the reminder: the old one is
// always cancelled, and a new one is scheduled only while the task is still
// pending. This covers edits to due date, recurrence and title alike.
func (c *TaskCoordinator) Update(ctx context.Context, t *task.Task) error {
	c.normalize(t)
	if err := c.tasks.Update(ctx, t); err != nil {
		return fmt.Errorf("failed to update task %d: %w", t.ID, err)
	}
	c.scheduler.CancelFor(ctx, notify.Tag(notify.CategoryTask, t.ID))
	if t.Active() {
		c.ScheduleReminder(ctx, t)
	}
	return nil
}

// Delete removes the task and cancels its reminder.
func (c *TaskCoordinator) Delete(ctx context.Context, id int64) error {
	if err := c.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	c.scheduler.CancelFor(ctx, notify.Tag(notify.CategoryTask, id))
	return nil
}

// Complete closes out the current occurrence. A recurring task rolls forward:
// status returns to pending on the next occurrence date and the reminder is
// replaced. A non-recurring task reaches its terminal COMPLETED state and the
// reminder is cancelled for good.
func (c *TaskCoordinator) Complete(ctx context.Context, id int64) (*task.Task, error) {
	return c.advance(ctx, id, task.StatusCompleted)
}

// Skip behaves like Complete but terminates a non-recurring task as SKIPPED.
func (c *TaskCoordinator) Skip(ctx context.Context, id int64) (*task.Task, error) {
	return c.advance(ctx, id, task.StatusSkipped)
}

func (c *TaskCoordinator) advance(ctx context.Context, id int64, terminal task.Status) (*task.Task, error) {
	t, err := c.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}

	log := c.logger.WithFields(logrus.Fields{"task_id": t.ID, "terminal": terminal})

	if t.IsRecurring {
		// The occurrence is consumed, the task itself lives on: project the
		// next due date from today, not from the old due date.
		t.DueDate = recurrence.NextTaskOccurrence(c.now(), t.RecurrenceKind, t.RecurrenceInterval)
		t.Status = task.StatusPending
		if err := c.tasks.Update(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to roll task %d forward: %w", id, err)
		}
		log.WithField("next_due", t.DueDate.Format("2006-01-02")).Info("Recurring task rolled forward")
		c.ScheduleReminder(ctx, t)
		return t, nil
	}

	t.Status = terminal
	if err := c.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to close task %d: %w", id, err)
	}
	c.scheduler.CancelFor(ctx, notify.Tag(notify.CategoryTask, t.ID))
	log.Info("Task closed")
	return t, nil
}

// List returns every task, open and closed.
func (c *TaskCoordinator) List(ctx context.Context) ([]*task.Task, error) {
	tasks, err := c.tasks.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ScheduleReminder recomputes and replaces the reminder for one task.
// Returns the gateway identifier, or "" when no reminder was issued.
func (c *TaskCoordinator) ScheduleReminder(ctx context.Context, t *task.Task) string {
	return c.scheduler.ScheduleFor(ctx, taskReminderRequest(t), c.loadPreferences(ctx))
}

// ScheduleAllReminders refreshes the reminder of every pending task. Used by
// the periodic refresher and after preference changes.
func (c *TaskCoordinator) ScheduleAllReminders(ctx context.Context) (int, error) {
	pending, err := c.tasks.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	reqs := make([]ReminderRequest, 0, len(pending))
	for _, t := range pending {
		reqs = append(reqs, taskReminderRequest(t))
	}
	n := c.scheduler.RescheduleAll(ctx, reqs, c.loadPreferences(ctx))
	c.logger.WithFields(logrus.Fields{"pending": len(pending), "scheduled": n}).Info("Task reminders refreshed")
	return n, nil
}

func (c *TaskCoordinator) loadPreferences(ctx context.Context) notify.Preferences {
	p, err := c.prefs.Get(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to load notification preferences, using defaults")
		return notify.DefaultPreferences()
	}
	return p
}

func taskReminderRequest(t *task.Task) ReminderRequest {
	return ReminderRequest{
		Category: notify.CategoryTask,
		EntityID: t.ID,
		Title:    "Task due",
		Body:     fmt.Sprintf("%s is due on %s", t.Title, t.DueDate.Format("Mon, 2 Jan")),
		DueDate:  t.DueDate,
	}
}

// normalize repairs form input the engine would otherwise choke on: a zero
// due date falls back to today and recurrence intervals are raised to 1. The
// fallback can hide an upstream input bug, so it is logged instead of being
// absorbed silently.
func (c *TaskCoordinator) normalize(t *task.Task) {
	if t.DueDate.IsZero() {
		t.DueDate = recurrence.DateOnly(c.now())
		c.logger.WithField("task_title", t.Title).Warn("Task has no due date, falling back to today")
	}
	if t.IsRecurring && t.RecurrenceInterval < 1 {
		t.RecurrenceInterval = 1
	}
}
