package bill

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving Bill entities.
type Repository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id int64) (*Bill, error)
	Update(ctx context.Context, b *Bill) error
	Delete(ctx context.Context, id int64) error
	ListUnpaid(ctx context.Context) ([]*Bill, error)
	ListAll(ctx context.Context) ([]*Bill, error)

	// ResetPaidBefore flips bills paid before cycleStart back to PENDING and
	// clears their payment snapshot. Returns the number of bills reset.
	ResetPaidBefore(ctx context.Context, cycleStart time.Time) (int64, error)
}
