package recurrence

import "time"

// Kind identifies how often a recurring obligation repeats.
type Kind string

const (
	KindDaily   Kind = "DAILY"
	KindWeekly  Kind = "WEEKLY"
	KindMonthly Kind = "MONTHLY"
)

// DateOnly strips the time-of-day component, keeping the location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddMonthsClamped adds n calendar months to d. When the source day does not
// exist in the target month the result is clamped to the last day of that
// month (Jan 31 + 1 month = Feb 29/28), never rolled into the following month.
func AddMonthsClamped(d time.Time, n int) time.Time {
	year, month, day := d.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, d.Location())
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, d.Location())
}

// NextTaskOccurrence projects the next due date of a recurring task from a
// reference date. interval values below 1 are treated as 1.
func NextTaskOccurrence(ref time.Time, kind Kind, interval int) time.Time {
	if interval < 1 {
		interval = 1
	}
	ref = DateOnly(ref)
	switch kind {
	case KindWeekly:
		return ref.AddDate(0, 0, 7*interval)
	case KindMonthly:
		return AddMonthsClamped(ref, interval)
	default: // daily
		return ref.AddDate(0, 0, interval)
	}
}

// NextMaintenanceDate projects the next maintenance date from the last
// recorded maintenance and an interval in months.
func NextMaintenanceDate(last time.Time, intervalMonths int) time.Time {
	if intervalMonths < 1 {
		intervalMonths = 1
	}
	return AddMonthsClamped(DateOnly(last), intervalMonths)
}

// NextBillCycleDate resolves the concrete due date of the current billing
// cycle: this month when the due day has not passed yet (due today counts),
// otherwise the following month. The due day is clamped to the length of the
// target month.
func NextBillCycleDate(dueDay int, today time.Time) time.Time {
	today = DateOnly(today)
	year, month := today.Year(), today.Month()
	if dueDay < today.Day() {
		month++
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, today.Location())
	day := dueDay
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, today.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
