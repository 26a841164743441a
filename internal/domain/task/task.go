package task

import (
	"database/sql"
	"time"

	"household_reminder_bot/internal/domain/recurrence"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusSkipped   Status = "SKIPPED"
)

// Task represents a household task, optionally recurring.
// Corresponds to the 'tasks' table.
type Task struct {
	ID                 int64
	Title              string
	DueDate            time.Time       // date precision
	DueTime            sql.NullString  // optional "HH:MM"
	IsRecurring        bool
	RecurrenceKind     recurrence.Kind // meaningful only when IsRecurring
	RecurrenceInterval int             // >= 1 when IsRecurring
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Active reports whether the task is still open and therefore
// reminder-eligible.
func (t *Task) Active() bool {
	return t.Status == StatusPending
}
