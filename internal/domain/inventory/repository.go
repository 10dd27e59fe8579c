package inventory

import (
	"context"

	"github.com/google/uuid"
)

// InventoryRepository provides access to per-product quantity records
type InventoryRepository interface {
	FindByProduct(ctx context.Context, productID uuid.UUID) (*Inventory, error)
	// FindByProductForUpdate re-reads the record inside the current
	// transaction with a row lock.
	FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*Inventory, error)
	Save(ctx context.Context, inv *Inventory) error
}

// InventoryLogRepository is the append-only ledger log. Entries are created
// and queried, never updated or deleted.
type InventoryLogRepository interface {
	Append(ctx context.Context, entry *InventoryLog) error
	FindByInventory(ctx context.Context, inventoryID uuid.UUID) ([]InventoryLog, error)
	// SumDeltas returns the sum of all deltas for an inventory record,
	// used to reconcile the ledger against the current quantity.
	SumDeltas(ctx context.Context, inventoryID uuid.UUID) (int, error)
}
