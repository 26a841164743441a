package task

import "context"

// Repository defines the operations for persisting and retrieving Task entities.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id int64) error
	ListPending(ctx context.Context) ([]*Task, error)
	ListAll(ctx context.Context) ([]*Task, error)
}
