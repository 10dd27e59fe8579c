package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Notification event kinds delivered through the fanout
const (
	KindNewOrder           = "new_order"
	KindOrderCreated       = "order_created"
	KindOrderStatusChanged = "order_status_changed"
	KindInventoryUpdate    = "inventory_update"
	KindLowStock           = "low_stock"
	KindRestockPlan        = "restock_plan_generated"
)

// BroadcastChannel receives every notification published without a scope
const BroadcastChannel = "broadcast"

// ShopChannel returns the channel name for a shop's subscribers
func ShopChannel(shopID uuid.UUID) string {
	return "shop:" + shopID.String()
}

// UserChannel returns the channel name for a user's subscribers
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// Notification is a fire-and-forget message delivered to channel subscribers.
// Delivery is at-most-once; a publish never blocks or fails the caller.
type Notification struct {
	Kind       string    `json:"kind"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewNotification creates a notification stamped with the current time
func NewNotification(kind string, payload any) Notification {
	return Notification{
		Kind:       kind,
		Payload:    payload,
		OccurredAt: time.Now(),
	}
}

// Notifier publishes notifications to named channels. Implementations must
// not block the caller and must swallow delivery failures. Callers publish
// only after their transaction has committed.
type Notifier interface {
	Publish(ctx context.Context, channel string, n Notification)
}

// NopNotifier is a Notifier that discards everything. It is used where no
// transport is configured so components never depend on global wiring.
type NopNotifier struct{}

// Publish discards the notification
func (NopNotifier) Publish(ctx context.Context, channel string, n Notification) {}

var _ Notifier = NopNotifier{}
