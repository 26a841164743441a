package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"household_reminder_bot/internal/domain/maintenance"
	"household_reminder_bot/internal/domain/notify"
	"household_reminder_bot/internal/domain/recurrence"

	"github.com/sirupsen/logrus"
)

// MaintenanceCoordinator reacts to maintenance item lifecycle events and to
// registered maintenance work.
type MaintenanceCoordinator struct {
	items     maintenance.Repository
	prefs     notify.PreferenceRepository
	scheduler *ReminderScheduler
	logger    *logrus.Entry
	now       func() time.Time
}

func NewMaintenanceCoordinator(items maintenance.Repository, prefs notify.PreferenceRepository, scheduler *ReminderScheduler, logger *logrus.Entry) *MaintenanceCoordinator {
	return &MaintenanceCoordinator{
		items:     items,
		prefs:     prefs,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

// Create persists a new item, projecting its next maintenance date when both
// the interval and the last maintenance date are known.
func (c *MaintenanceCoordinator) Create(ctx context.Context, item *maintenance.Item) error {
	recomputeNextDate(item)
	if err := c.items.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to create maintenance item: %w", err)
	}
	if item.NextDate.Valid {
		c.ScheduleReminder(ctx, item)
	}
	return nil
}

// Update persists edits, reprojects the next date and replaces the reminder.
func (c *MaintenanceCoordinator) Update(ctx context.Context, item *maintenance.Item) error {
	recomputeNextDate(item)
	if err := c.items.Update(ctx, item); err != nil {
		return fmt.Errorf("failed to update maintenance item %d: %w", item.ID, err)
	}
	c.scheduler.CancelFor(ctx, notify.Tag(notify.CategoryMaintenance, item.ID))
	if item.NextDate.Valid {
		c.ScheduleReminder(ctx, item)
	}
	return nil
}

// Delete removes the item and cancels its reminder. Event history is removed
// with the item by the repository.
func (c *MaintenanceCoordinator) Delete(ctx context.Context, id int64) error {
	if err := c.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete maintenance item %d: %w", id, err)
	}
	c.scheduler.CancelFor(ctx, notify.Tag(notify.CategoryMaintenance, id))
	return nil
}

// RegisterEvent writes a history record for performed maintenance, rolls the
// item's last/next dates forward when an interval is set, and replaces the
// reminder for the new date.
func (c *MaintenanceCoordinator) RegisterEvent(ctx context.Context, itemID int64, performedAt time.Time, notes string) (*maintenance.Item, error) {
	item, err := c.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get maintenance item %d: %w", itemID, err)
	}

	if performedAt.IsZero() {
		c.logger.WithField("item_id", itemID).Warn("Maintenance event has no date, falling back to today")
		performedAt = c.now()
	}

	event := &maintenance.Event{ItemID: itemID, PerformedAt: recurrence.DateOnly(performedAt)}
	if notes != "" {
		event.Notes = sql.NullString{String: notes, Valid: true}
	}
	if err := c.items.AddEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record maintenance event for item %d: %w", itemID, err)
	}

	item.LastDate = sql.NullTime{Time: recurrence.DateOnly(performedAt), Valid: true}
	recomputeNextDate(item)
	if err := c.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update maintenance item %d after event: %w", itemID, err)
	}

	log := c.logger.WithField("item_id", itemID)
	c.scheduler.CancelFor(ctx, notify.Tag(notify.CategoryMaintenance, itemID))
	if item.NextDate.Valid {
		log = log.WithField("next_date", item.NextDate.Time.Format("2006-01-02"))
		c.ScheduleReminder(ctx, item)
	}
	log.Info("Maintenance event registered")
	return item, nil
}

// List returns every maintenance item.
func (c *MaintenanceCoordinator) List(ctx context.Context) ([]*maintenance.Item, error) {
	items, err := c.items.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance items: %w", err)
	}
	return items, nil
}

// History returns the recorded maintenance events for one item.
func (c *MaintenanceCoordinator) History(ctx context.Context, itemID int64) ([]*maintenance.Event, error) {
	events, err := c.items.ListEvents(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance events for item %d: %w", itemID, err)
	}
	return events, nil
}

// ScheduleReminder recomputes and replaces the reminder for one item. Items
// without a projected next date never get a reminder.
func (c *MaintenanceCoordinator) ScheduleReminder(ctx context.Context, item *maintenance.Item) string {
	if !item.NextDate.Valid {
		return ""
	}
	return c.scheduler.ScheduleFor(ctx, maintenanceReminderRequest(item), c.loadPreferences(ctx))
}

// ScheduleAllReminders refreshes the reminder of every item with a known next
// maintenance date.
func (c *MaintenanceCoordinator) ScheduleAllReminders(ctx context.Context) (int, error) {
	items, err := c.items.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list maintenance items: %w", err)
	}
	reqs := make([]ReminderRequest, 0, len(items))
	for _, item := range items {
		if item.NextDate.Valid {
			reqs = append(reqs, maintenanceReminderRequest(item))
		}
	}
	n := c.scheduler.RescheduleAll(ctx, reqs, c.loadPreferences(ctx))
	c.logger.WithFields(logrus.Fields{"eligible": len(reqs), "scheduled": n}).Info("Maintenance reminders refreshed")
	return n, nil
}

func (c *MaintenanceCoordinator) loadPreferences(ctx context.Context) notify.Preferences {
	p, err := c.prefs.Get(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to load notification preferences, using defaults")
		return notify.DefaultPreferences()
	}
	return p
}

func maintenanceReminderRequest(item *maintenance.Item) ReminderRequest {
	return ReminderRequest{
		Category: notify.CategoryMaintenance,
		EntityID: item.ID,
		Title:    "Maintenance due",
		Body:     fmt.Sprintf("%s is due on %s", item.Name, item.NextDate.Time.Format("Mon, 2 Jan")),
		DueDate:  item.NextDate.Time,
	}
}

// recomputeNextDate projects NextDate only when both the interval and the
// last maintenance date are present; otherwise the stored value is left
// untouched.
func recomputeNextDate(item *maintenance.Item) {
	if !item.IntervalMonths.Valid || !item.LastDate.Valid {
		return
	}
	next := recurrence.NextMaintenanceDate(item.LastDate.Time, int(item.IntervalMonths.Int32))
	item.NextDate = sql.NullTime{Time: next, Valid: true}
}
