package notify

import "context"

// DefaultReminderTime is the clock time reminders fire at when the stored
// preference is missing or malformed.
const DefaultReminderTime = "09:00"

// Preferences holds the household's notification settings: a global switch,
// per-category switches, the reminder clock time and per-category lead times
// in days before the due date.
type Preferences struct {
	Enabled bool

	TasksEnabled       bool
	BillsEnabled       bool
	MaintenanceEnabled bool

	ReminderTime string // "HH:MM"

	TaskLeadDays        int
	BillLeadDays        int
	MaintenanceLeadDays int
}

// DefaultPreferences returns the settings used before the household saves any.
func DefaultPreferences() Preferences {
	return Preferences{
		Enabled:             true,
		TasksEnabled:        true,
		BillsEnabled:        true,
		MaintenanceEnabled:  true,
		ReminderTime:        DefaultReminderTime,
		TaskLeadDays:        0,
		BillLeadDays:        3,
		MaintenanceLeadDays: 7,
	}
}

// CategoryEnabled reports whether the per-category toggle allows reminders
// for c. The global Enabled flag is checked separately by the scheduler.
func (p Preferences) CategoryEnabled(c Category) bool {
	switch c {
	case CategoryTask:
		return p.TasksEnabled
	case CategoryBill:
		return p.BillsEnabled
	case CategoryMaintenance:
		return p.MaintenanceEnabled
	}
	return false
}

// LeadDays returns how many days before the relevant date a reminder for c
// should fire.
func (p Preferences) LeadDays(c Category) int {
	var days int
	switch c {
	case CategoryTask:
		days = p.TaskLeadDays
	case CategoryBill:
		days = p.BillLeadDays
	case CategoryMaintenance:
		days = p.MaintenanceLeadDays
	}
	if days < 0 {
		days = 0
	}
	return days
}

// PreferenceRepository is the persisted key-value store for Preferences.
// Get must return DefaultPreferences when nothing has been saved yet.
type PreferenceRepository interface {
	Get(ctx context.Context) (Preferences, error)
	Save(ctx context.Context, p Preferences) error
}
