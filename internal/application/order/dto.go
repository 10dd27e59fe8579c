package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerops/backend/internal/domain/order"
)

// CartItem is one line of a checkout cart. ProductID may be the canonical
// product id or an external id assigned by the source marketplace.
type CartItem struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// CheckoutRequest is the order intake input
type CheckoutRequest struct {
	BuyerID       uuid.UUID
	CustomerEmail string
	CustomerName  string
	Platform      string
	Items         []CartItem
	DeclaredTotal decimal.Decimal
}

// ShopOutcome is the per-shop result of a checkout. A multi-shop cart is
// not one distributed transaction: each shop either carries a created order
// or an error, and earlier successes survive later failures.
type ShopOutcome struct {
	ShopID   uuid.UUID      `json:"shop_id"`
	ShopName string         `json:"shop_name"`
	Order    *OrderResponse `json:"order,omitempty"`
	Err      error          `json:"-"`
}

// OrderResponse is the API-facing view of an order
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	ShopID        uuid.UUID           `json:"shop_id"`
	Platform      string              `json:"platform"`
	BuyerID       uuid.UUID           `json:"buyer_id"`
	CustomerEmail string              `json:"customer_email"`
	CustomerName  string              `json:"customer_name"`
	Items         []OrderItemResponse `json:"items"`
	Total         decimal.Decimal     `json:"total"`
	Revenue       decimal.Decimal     `json:"revenue"`
	Profit        decimal.Decimal     `json:"profit"`
	Status        string              `json:"status"`
	CreatedAt     string              `json:"created_at"`
}

// OrderItemResponse is the API-facing view of a line item
type OrderItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// ToOrderResponse maps an order aggregate to its response form
func ToOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	return &OrderResponse{
		ID:            o.ID,
		ShopID:        o.ShopID,
		Platform:      o.Platform,
		BuyerID:       o.BuyerID,
		CustomerEmail: o.CustomerEmail,
		CustomerName:  o.CustomerName,
		Items:         items,
		Total:         o.Total,
		Revenue:       o.Revenue,
		Profit:        o.Profit,
		Status:        o.Status.String(),
		CreatedAt:     o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ActorRef identifies who is performing a status update
type ActorRef struct {
	UserID uuid.UUID
	Email  string
	Role   order.Actor
}
