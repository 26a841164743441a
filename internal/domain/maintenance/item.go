package maintenance

import (
	"database/sql"
	"time"
)

// Urgency is the derived state of a maintenance item relative to a reference
// date. It is never persisted.
type Urgency string

const (
	UrgencyNone    Urgency = "NONE" // no next date known
	UrgencyOK      Urgency = "OK"
	UrgencyDueSoon Urgency = "DUE_SOON" // within 7 days
	UrgencyOverdue Urgency = "OVERDUE"
)

// Item represents a recurring maintenance obligation (e.g. boiler service).
// NextDate is only recomputed when both IntervalMonths and LastDate are set.
// Corresponds to the 'maintenance_items' table.
type Item struct {
	ID             int64
	Name           string
	IntervalMonths sql.NullInt32
	LastDate       sql.NullTime
	NextDate       sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Event records one performed maintenance action for an item.
// Corresponds to the 'maintenance_events' table.
type Event struct {
	ID          int64
	ItemID      int64
	PerformedAt time.Time
	Notes       sql.NullString
	CreatedAt   time.Time
}
