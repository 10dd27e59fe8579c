package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ShopRepository provides access to shops
type ShopRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)
	FindByOwnerAndPlatform(ctx context.Context, ownerID uuid.UUID, platform string) (*Shop, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]Shop, error)
	Save(ctx context.Context, shop *Shop) error
}

// ProductRepository provides access to products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByIDForUpdate re-reads the product inside the current transaction
	// with a row lock, so concurrent debits are serialized on the row.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByExternalID(ctx context.Context, externalID string) (*Product, error)
	FindByShop(ctx context.Context, shopID uuid.UUID) ([]Product, error)
	Save(ctx context.Context, product *Product) error
}
