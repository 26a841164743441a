package status

import (
	"database/sql"
	"testing"
	"time"

	"household_reminder_bot/internal/domain/bill"
	"household_reminder_bot/internal/domain/maintenance"
	"household_reminder_bot/internal/domain/task"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestForBill(t *testing.T) {
	cases := []struct {
		name  string
		bill  bill.Bill
		today time.Time
		want  bill.CycleStatus
	}{
		{"pending before due day", bill.Bill{DueDay: 20, Status: bill.StatusPending}, date(2024, time.March, 10), bill.StatusPending},
		{"pending on due day", bill.Bill{DueDay: 20, Status: bill.StatusPending}, date(2024, time.March, 20), bill.StatusPending},
		{"overdue after due day", bill.Bill{DueDay: 20, Status: bill.StatusPending}, date(2024, time.March, 21), bill.StatusOverdue},
		{"stored overdue recovers to pending in new month", bill.Bill{DueDay: 20, Status: bill.StatusOverdue}, date(2024, time.April, 2), bill.StatusPending},
		{"paid is sticky past due day", bill.Bill{DueDay: 5, Status: bill.StatusPaid, PaidAt: sql.NullTime{Time: date(2024, time.March, 4), Valid: true}}, date(2024, time.March, 25), bill.StatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ForBill(&tc.bill, tc.today); got != tc.want {
				t.Errorf("ForBill = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestForMaintenance(t *testing.T) {
	today := date(2024, time.June, 10)
	cases := []struct {
		name string
		next sql.NullTime
		want maintenance.Urgency
	}{
		{"no next date", sql.NullTime{}, maintenance.UrgencyNone},
		{"past date overdue", sql.NullTime{Time: date(2024, time.June, 9), Valid: true}, maintenance.UrgencyOverdue},
		{"today due soon", sql.NullTime{Time: today, Valid: true}, maintenance.UrgencyDueSoon},
		{"seventh day due soon", sql.NullTime{Time: date(2024, time.June, 17), Valid: true}, maintenance.UrgencyDueSoon},
		{"eighth day ok", sql.NullTime{Time: date(2024, time.June, 18), Valid: true}, maintenance.UrgencyOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := &maintenance.Item{NextDate: tc.next}
			if got := ForMaintenance(item, today); got != tc.want {
				t.Errorf("ForMaintenance = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestTaskOverdue(t *testing.T) {
	today := date(2024, time.May, 10)
	cases := []struct {
		name string
		task task.Task
		want bool
	}{
		{"pending past due", task.Task{Status: task.StatusPending, DueDate: date(2024, time.May, 9)}, true},
		{"pending due today", task.Task{Status: task.StatusPending, DueDate: today}, false},
		{"pending future", task.Task{Status: task.StatusPending, DueDate: date(2024, time.May, 11)}, false},
		{"completed never overdue", task.Task{Status: task.StatusCompleted, DueDate: date(2024, time.January, 1)}, false},
		{"skipped never overdue", task.Task{Status: task.StatusSkipped, DueDate: date(2024, time.January, 1)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TaskOverdue(&tc.task, today); got != tc.want {
				t.Errorf("TaskOverdue = %v, want %v", got, tc.want)
			}
		})
	}
}
