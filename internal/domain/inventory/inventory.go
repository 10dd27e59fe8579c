package inventory

import (
	"github.com/google/uuid"

	"github.com/sellerops/backend/internal/domain/shared"
)

// Inventory is the per-product quantity record backing the ledger.
// It tracks Product.Stock in lock-step; both are mutated together by the
// stock mutator and must never diverge.
type Inventory struct {
	shared.BaseEntity
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Quantity  int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Inventory) TableName() string {
	return "inventories"
}

// NewInventory creates the quantity record for a product
func NewInventory(productID uuid.UUID, quantity int) (*Inventory, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	return &Inventory{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Quantity:   quantity,
	}, nil
}

// Apply adds a signed delta to the quantity. The resulting quantity must
// stay non-negative; the sufficiency check for debits happens before this
// against the freshly read product stock.
func (i *Inventory) Apply(delta int) error {
	if i.Quantity+delta < 0 {
		return shared.ErrInsufficientStock
	}
	i.Quantity += delta
	i.Touch()
	return nil
}
