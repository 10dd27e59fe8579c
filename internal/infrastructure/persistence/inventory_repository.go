package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sellerops/backend/internal/domain/inventory"
	"github.com/sellerops/backend/internal/domain/shared"
)

// GormInventoryRepository implements InventoryRepository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByProduct finds the inventory record for a product
func (r *GormInventoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.Inventory, error) {
	var inv inventory.Inventory
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByProductForUpdate finds the inventory record with a row lock
func (r *GormInventoryRepository) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*inventory.Inventory, error) {
	var inv inventory.Inventory
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// Save creates or updates an inventory record
func (r *GormInventoryRepository) Save(ctx context.Context, inv *inventory.Inventory) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

var _ inventory.InventoryRepository = (*GormInventoryRepository)(nil)

// GormInventoryLogRepository implements the append-only ledger log using GORM
type GormInventoryLogRepository struct {
	db *gorm.DB
}

// NewGormInventoryLogRepository creates a new GormInventoryLogRepository
func NewGormInventoryLogRepository(db *gorm.DB) *GormInventoryLogRepository {
	return &GormInventoryLogRepository{db: db}
}

// Append inserts a log entry. Entries are never updated or deleted.
func (r *GormInventoryLogRepository) Append(ctx context.Context, entry *inventory.InventoryLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByInventory returns all log entries for an inventory record in
// chronological order.
func (r *GormInventoryLogRepository) FindByInventory(ctx context.Context, inventoryID uuid.UUID) ([]inventory.InventoryLog, error) {
	var entries []inventory.InventoryLog
	if err := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("created_at").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// SumDeltas returns the sum of all deltas for an inventory record
func (r *GormInventoryLogRepository) SumDeltas(ctx context.Context, inventoryID uuid.UUID) (int, error) {
	var sum *int
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryLog{}).
		Select("SUM(delta)").
		Where("inventory_id = ?", inventoryID).
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

var _ inventory.InventoryLogRepository = (*GormInventoryLogRepository)(nil)
