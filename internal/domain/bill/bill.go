package bill

import (
	"database/sql"
	"time"
)

// CycleStatus is a snapshot of the current billing cycle. It is not a ledger
// entry: paying a bill marks this cycle PAID, and the monthly rollover resets
// the snapshot to PENDING when a new cycle begins.
type CycleStatus string

const (
	StatusPending CycleStatus = "PENDING"
	StatusPaid    CycleStatus = "PAID"
	StatusOverdue CycleStatus = "OVERDUE"
)

// Bill represents a recurring monthly bill.
// Corresponds to the 'bills' table.
type Bill struct {
	ID          int64
	Name        string
	DueDay      int // day of month, 1-31
	IsRecurring bool
	Status      CycleStatus
	PaidAt      sql.NullTime
	PaidAmount  sql.NullFloat64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Unpaid reports whether the current cycle still needs payment.
func (b *Bill) Unpaid() bool {
	return b.Status != StatusPaid
}
