package notify

import (
	"context"
	"fmt"
	"time"
)

// Category identifies which household domain a notification belongs to. It is
// also the first half of the notification tag.
type Category string

const (
	CategoryTask        Category = "task"
	CategoryBill        Category = "bill"
	CategoryMaintenance Category = "maintenance"
)

// Tag builds the deterministic key identifying every notification that
// belongs to one entity: "{kind}_{id}".
func Tag(c Category, entityID int64) string {
	return fmt.Sprintf("%s_%d", c, entityID)
}

// Notification is a request to the platform notification subsystem.
type Notification struct {
	Title     string
	Body      string
	TriggerAt time.Time
	Tag       string
}

// Scheduled describes a notification currently pending inside the gateway.
type Scheduled struct {
	ID        string
	Tag       string
	TriggerAt time.Time
}

// Gateway is the contract of the platform notification subsystem. The engine
// never owns a timer loop: once scheduled, firing is entirely the gateway's
// concern. Availability must be a stable property checked once at wiring
// time, not re-derived per call.
type Gateway interface {
	Available() bool
	Schedule(ctx context.Context, n Notification) (string, error)
	Cancel(ctx context.Context, id string) error
	ListScheduled(ctx context.Context) ([]Scheduled, error)
}
