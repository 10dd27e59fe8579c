package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/sellerops/backend/internal/domain/shared"
)

// Well-known mutation reasons recorded on ledger entries
const (
	ReasonOrderPlaced      = "Order placed"
	ReasonOrderCancelled   = "Order cancelled"
	ReasonOrderReturned    = "Order returned"
	ReasonMarketplaceSync  = "Marketplace sync"
	ReasonManualAdjustment = "Manual adjustment"
)

// InventoryLog is an immutable record of one signed stock movement.
// Once created, rows are never modified; corrections are new rows. From the
// point a product is created, the sum of its deltas reconciles with the
// current ledger quantity.
type InventoryLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	InventoryID uuid.UUID `gorm:"type:uuid;not null;index:idx_inventory_log_inventory_time,priority:1"`
	Delta       int       `gorm:"not null"`
	Reason      string    `gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;index:idx_inventory_log_inventory_time,priority:2"`
}

// TableName returns the table name for GORM
func (InventoryLog) TableName() string {
	return "inventory_logs"
}

// NewInventoryLog creates a ledger entry for a stock movement
func NewInventoryLog(inventoryID uuid.UUID, delta int, reason string) (*InventoryLog, error) {
	if inventoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVENTORY", "Inventory ID cannot be empty")
	}
	if delta == 0 {
		return nil, shared.NewDomainError("INVALID_DELTA", "Delta cannot be zero")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reason is required")
	}

	return &InventoryLog{
		ID:          uuid.New(),
		InventoryID: inventoryID,
		Delta:       delta,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}, nil
}

// IsCredit returns true if the entry increased stock
func (l *InventoryLog) IsCredit() bool {
	return l.Delta > 0
}
