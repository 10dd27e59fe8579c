package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerops/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// OrderItemInfo represents line item information for events
type OrderItemInfo struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func itemInfos(items []OrderItem) []OrderItemInfo {
	infos := make([]OrderItemInfo, len(items))
	for i, item := range items {
		infos[i] = OrderItemInfo{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return infos
}

// OrderCreatedEvent is raised when a new order is created from a checkout
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	BuyerID      uuid.UUID       `json:"buyer_id"`
	Platform     string          `json:"platform"`
	CustomerName string          `json:"customer_name"`
	Items        []OrderItemInfo `json:"items"`
	Total        decimal.Decimal `json:"total"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID, o.ShopID),
		OrderID:         o.ID,
		BuyerID:         o.BuyerID,
		Platform:        o.Platform,
		CustomerName:    o.CustomerName,
		Items:           itemInfos(o.Items),
		Total:           o.Total,
	}
}

// EventType returns the event type name
func (e *OrderCreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// OrderStatusChangedEvent is raised when a status transition is applied
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID   `json:"order_id"`
	BuyerID uuid.UUID   `json:"buyer_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
	Actor   Actor       `json:"actor"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from, to OrderStatus, actor Actor) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID, o.ShopID),
		OrderID:         o.ID,
		BuyerID:         o.BuyerID,
		From:            from,
		To:              to,
		Actor:           actor,
	}
}

// EventType returns the event type name
func (e *OrderStatusChangedEvent) EventType() string {
	return EventTypeOrderStatusChanged
}
