package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerops/backend/internal/domain/shared"
)

// OrderItem represents a line item in an order. Items are fixed at order
// creation; the captured unit price and unit cost never change afterwards.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	SKU         string          `gorm:"type:varchar(100);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Quantity * UnitPrice
	CreatedAt   time.Time
}

// NewOrderItem creates a line item capturing price and cost at sale time
func NewOrderItem(productID uuid.UUID, productName, sku string, quantity int, unitPrice, unitCost decimal.Decimal) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	return &OrderItem{
		ID:          uuid.New(),
		ProductID:   productID,
		ProductName: productName,
		SKU:         sku,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		UnitCost:    unitCost,
		Amount:      unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:   time.Now(),
	}, nil
}

// Margin returns (UnitPrice - UnitCost) * Quantity for the line
func (i *OrderItem) Margin() decimal.Decimal {
	return i.UnitPrice.Sub(i.UnitCost).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents one shop's portion of a checkout. A cart spanning N
// shops yields N independent orders. Items are immutable after creation;
// only the status mutates.
type Order struct {
	shared.ShopAggregateRoot
	Platform      string          `gorm:"type:varchar(30);not null"`
	BuyerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerEmail string          `gorm:"type:varchar(200);not null;index"`
	CustomerName  string          `gorm:"type:varchar(200);not null"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;references:ID"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Revenue       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Profit        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index"`
	CompletedAt   *time.Time
	CancelledAt   *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates an order in PENDING with its items fixed. Totals and
// profit are derived from the items' captured prices and costs.
func NewOrder(shopID uuid.UUID, platform string, buyerID uuid.UUID, customerEmail, customerName string, items []OrderItem) (*Order, error) {
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop ID cannot be empty")
	}
	if platform == "" {
		return nil, shared.NewDomainError("INVALID_PLATFORM", "Platform cannot be empty")
	}
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer ID cannot be empty")
	}
	if customerEmail == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_EMAIL", "Customer email cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order must have at least one item")
	}

	o := &Order{
		ShopAggregateRoot: shared.NewShopAggregateRoot(shopID),
		Platform:          platform,
		BuyerID:           buyerID,
		CustomerEmail:     customerEmail,
		CustomerName:      customerName,
		Items:             make([]OrderItem, 0, len(items)),
		Status:            StatusPending,
	}

	total := decimal.Zero
	profit := decimal.Zero
	for _, item := range items {
		item.OrderID = o.ID
		o.Items = append(o.Items, item)
		total = total.Add(item.Amount)
		profit = profit.Add(item.Margin())
	}
	o.Total = total
	o.Revenue = total
	o.Profit = profit

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// RequiresRestoration reports whether moving to target must restore stock:
// the target is cancellation-class and the order is not already in a
// cancellation-class state.
func (o *Order) RequiresRestoration(target OrderStatus) bool {
	return target.IsCancellation() && !o.Status.IsCancellation()
}

// TransitionTo applies a status transition requested by an actor. A target
// absent from the actor's transition table is rejected with a message
// enumerating the allowed next states.
func (o *Order) TransitionTo(actor Actor, target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", string(target)))
	}
	if !CanTransition(actor, o.Status, target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot move order from %s to %s; allowed: [%s]",
				o.Status, target, formatTargets(AllowedTargets(actor, o.Status))))
	}

	from := o.Status
	now := time.Now()
	o.Status = target
	o.UpdatedAt = now

	switch target {
	case StatusCompleted:
		o.CompletedAt = &now
	case StatusCancelled, StatusReturnRefund:
		o.CancelledAt = &now
	}

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target, actor))

	return nil
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the sum of all item quantities
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

func formatTargets(targets []OrderStatus) string {
	parts := make([]string, 0, len(targets))
	for _, t := range targets {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}
