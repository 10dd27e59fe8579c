package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository provides access to orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByShop(ctx context.Context, shopID uuid.UUID) ([]Order, error)
	// FindByShopSince returns orders created at or after the given time,
	// used by the scoring engine for its sales window.
	FindByShopSince(ctx context.Context, shopID uuid.UUID, since time.Time) ([]Order, error)
	FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]Order, error)
	Save(ctx context.Context, o *Order) error
}
