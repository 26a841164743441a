// Package status derives time-sensitive entity status from a reference date.
// Results are computed on read and never persisted: the store may hold a
// stale status that these resolvers override for display and for
// reminder-eligibility decisions.
package status

import (
	"time"

	"household_reminder_bot/internal/domain/bill"
	"household_reminder_bot/internal/domain/maintenance"
	"household_reminder_bot/internal/domain/recurrence"
	"household_reminder_bot/internal/domain/task"
)

// maintenanceWarningWindow is how close a maintenance date may get before the
// item is reported as due soon.
const maintenanceWarningWindow = 7 * 24 * time.Hour

// ForBill resolves the bill's current-cycle status. A paid bill stays paid:
// the resolver performs no automatic return to pending, that transition is
// owned by the monthly cycle rollover.
func ForBill(b *bill.Bill, today time.Time) bill.CycleStatus {
	if b.Status == bill.StatusPaid {
		return bill.StatusPaid
	}
	if today.Day() > b.DueDay {
		return bill.StatusOverdue
	}
	return bill.StatusPending
}

// ForMaintenance resolves a maintenance item's urgency from its next date.
func ForMaintenance(item *maintenance.Item, today time.Time) maintenance.Urgency {
	if !item.NextDate.Valid {
		return maintenance.UrgencyNone
	}
	next := recurrence.DateOnly(item.NextDate.Time)
	today = recurrence.DateOnly(today)
	switch {
	case next.Before(today):
		return maintenance.UrgencyOverdue
	case next.Sub(today) <= maintenanceWarningWindow:
		return maintenance.UrgencyDueSoon
	default:
		return maintenance.UrgencyOK
	}
}

// TaskOverdue reports whether a pending task's due date lies strictly before
// today, at date precision.
func TaskOverdue(t *task.Task, today time.Time) bool {
	if t.Status != task.StatusPending {
		return false
	}
	return recurrence.DateOnly(t.DueDate).Before(recurrence.DateOnly(today))
}
