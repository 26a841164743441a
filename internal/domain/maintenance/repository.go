package maintenance

import "context"

// Repository defines the operations for persisting and retrieving maintenance
// items and their event history.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]*Item, error)

	AddEvent(ctx context.Context, event *Event) error
	ListEvents(ctx context.Context, itemID int64) ([]*Event, error)
}
