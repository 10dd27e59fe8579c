package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerops/backend/internal/domain/shared"
)

// Product represents a sellable item owned by exactly one shop.
// Stock is an integer mirror of the current ledger quantity; every change
// must go through the stock mutator so the ledger stays reconciled.
type Product struct {
	shared.ShopAggregateRoot
	ExternalID *string         `gorm:"type:varchar(100);index"` // ID assigned by the source marketplace
	SKU        string          `gorm:"type:varchar(100);not null"`
	Name       string          `gorm:"type:varchar(200);not null"`
	Price      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Cost       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Stock      int             `gorm:"not null;default:0"`
	ExpiryDate *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product for a shop
func NewProduct(shopID uuid.UUID, sku, name string, price, cost decimal.Decimal, stock int) (*Product, error) {
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop ID cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if cost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	return &Product{
		ShopAggregateRoot: shared.NewShopAggregateRoot(shopID),
		SKU:               sku,
		Name:              name,
		Price:             price,
		Cost:              cost,
		Stock:             stock,
	}, nil
}

// SetExternalID links the product to its marketplace identifier
func (p *Product) SetExternalID(externalID string) {
	p.ExternalID = &externalID
	p.Touch()
}

// SetExpiryDate sets the product's expiry date
func (p *Product) SetExpiryDate(expiry time.Time) {
	p.ExpiryDate = &expiry
	p.Touch()
}

// UnitMargin returns price minus cost for a single unit
func (p *Product) UnitMargin() decimal.Decimal {
	return p.Price.Sub(p.Cost)
}

// CanFulfill returns true if current stock covers the requested quantity
func (p *Product) CanFulfill(quantity int) bool {
	return p.Stock >= quantity
}

// IsOutOfStock returns true if the product has no stock at all
func (p *Product) IsOutOfStock() bool {
	return p.Stock <= 0
}

// DaysToExpiry returns the whole days until expiry relative to now,
// or false if the product has no expiry date.
func (p *Product) DaysToExpiry(now time.Time) (int, bool) {
	if p.ExpiryDate == nil {
		return 0, false
	}
	return int(p.ExpiryDate.Sub(now).Hours() / 24), true
}
