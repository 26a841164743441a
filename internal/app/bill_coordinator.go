package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"household_reminder_bot/internal/domain/bill"
	"household_reminder_bot/internal/domain/notify"
	"household_reminder_bot/internal/domain/recurrence"

	"github.com/sirupsen/logrus"
)

// BillCoordinator reacts to bill lifecycle events. Paying a bill only closes
// the current cycle; the reminder for the next cycle is re-established by the
// periodic refresh once the rollover has reset the bill, not by MarkPaid.
type BillCoordinator struct {
	bills     bill.Repository
	prefs     notify.PreferenceRepository
	scheduler *ReminderScheduler
	logger    *logrus.Entry
	now       func() time.Time
}

func NewBillCoordinator(bills bill.Repository, prefs notify.PreferenceRepository, scheduler *ReminderScheduler, logger *logrus.Entry) *BillCoordinator {
	return &BillCoordinator{
		bills:     bills,
		prefs:     prefs,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

// Create persists a new bill and schedules its reminder while unpaid.
func (c *BillCoordinator) Create(ctx context.Context, b *bill.Bill) error {
	c.normalize(b)
	if err := c.bills.Create(ctx, b); err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	if b.Unpaid() {
		c.ScheduleReminder(ctx, b)
	}
	return nil
}

// Update persists bill edits, cancels the old reminder and schedules a fresh
// one while the current cycle is unpaid.
func (c *BillCoordinator) Update(ctx context.Context, b *bill.Bill) error {
	c.normalize(b)
	if err := c.bills.Update(ctx, b); err != nil {
		return fmt.Errorf("failed to update bill %d: %w", b.ID, err)
	}
	c.scheduler.CancelFor(ctx, notify.Tag(notify.CategoryBill, b.ID))
	if b.Unpaid() {
		c.ScheduleReminder(ctx, b)
	}
	return nil
}

// Delete removes the bill and cancels its reminder.
func (c *BillCoordinator) Delete(ctx context.Context, id int64) error {
	if err := c.bills.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete bill %d: %w", id, err)
	}
	c.scheduler.CancelFor(ctx, notify.Tag(notify.CategoryBill, id))
	return nil
}

// MarkPaid records a payment for the current cycle and cancels the reminder.
// No reminder is created for the next cycle here.
func (c *BillCoordinator) MarkPaid(ctx context.Context, id int64, amount float64) (*bill.Bill, error) {
	b, err := c.bills.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill %d: %w", id, err)
	}
	if b.Status == bill.StatusPaid {
		c.logger.WithField("bill_id", id).Info("Bill already paid this cycle")
		return b, nil
	}

	b.Status = bill.StatusPaid
	b.PaidAt = sql.NullTime{Time: c.now(), Valid: true}
	b.PaidAmount = sql.NullFloat64{Float64: amount, Valid: true}
	if err := c.bills.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to mark bill %d paid: %w", id, err)
	}
	c.scheduler.CancelFor(ctx, notify.Tag(notify.CategoryBill, id))
	c.logger.WithFields(logrus.Fields{"bill_id": id, "amount": amount}).Info("Bill marked paid")
	return b, nil
}

// RolloverCycles resets bills paid in an earlier calendar month back to
// PENDING so the new cycle's reminder becomes eligible again. Runs daily, is
// idempotent, and returns the number of bills reset.
func (c *BillCoordinator) RolloverCycles(ctx context.Context) (int64, error) {
	now := c.now()
	cycleStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	n, err := c.bills.ResetPaidBefore(ctx, cycleStart)
	if err != nil {
		return 0, fmt.Errorf("failed to roll over bill cycles: %w", err)
	}
	if n > 0 {
		c.logger.WithField("reset", n).Info("Bill cycles rolled over")
	}
	return n, nil
}

// List returns every bill regardless of cycle status.
func (c *BillCoordinator) List(ctx context.Context) ([]*bill.Bill, error) {
	bills, err := c.bills.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

// ScheduleReminder recomputes and replaces the reminder for one bill.
func (c *BillCoordinator) ScheduleReminder(ctx context.Context, b *bill.Bill) string {
	return c.scheduler.ScheduleFor(ctx, c.billReminderRequest(b), c.loadPreferences(ctx))
}

// ScheduleAllReminders refreshes the reminder of every unpaid bill.
func (c *BillCoordinator) ScheduleAllReminders(ctx context.Context) (int, error) {
	unpaid, err := c.bills.ListUnpaid(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unpaid bills: %w", err)
	}
	reqs := make([]ReminderRequest, 0, len(unpaid))
	for _, b := range unpaid {
		reqs = append(reqs, c.billReminderRequest(b))
	}
	n := c.scheduler.RescheduleAll(ctx, reqs, c.loadPreferences(ctx))
	c.logger.WithFields(logrus.Fields{"unpaid": len(unpaid), "scheduled": n}).Info("Bill reminders refreshed")
	return n, nil
}

func (c *BillCoordinator) loadPreferences(ctx context.Context) notify.Preferences {
	p, err := c.prefs.Get(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to load notification preferences, using defaults")
		return notify.DefaultPreferences()
	}
	return p
}

func (c *BillCoordinator) billReminderRequest(b *bill.Bill) ReminderRequest {
	due := recurrence.NextBillCycleDate(b.DueDay, c.now())
	return ReminderRequest{
		Category: notify.CategoryBill,
		EntityID: b.ID,
		Title:    "Bill due",
		Body:     fmt.Sprintf("%s is due on %s", b.Name, due.Format("Mon, 2 Jan")),
		DueDate:  due,
	}
}

func (c *BillCoordinator) normalize(b *bill.Bill) {
	if b.DueDay < 1 {
		b.DueDay = 1
		c.logger.WithField("bill_name", b.Name).Warn("Bill due day below 1, clamping")
	}
	if b.DueDay > 31 {
		b.DueDay = 31
		c.logger.WithField("bill_name", b.Name).Warn("Bill due day above 31, clamping")
	}
	if b.Status == "" {
		b.Status = bill.StatusPending
	}
}
