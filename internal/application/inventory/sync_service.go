package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerops/backend/internal/domain/catalog"
	"github.com/sellerops/backend/internal/domain/inventory"
	"github.com/sellerops/backend/internal/domain/shared"
)

// SyncService reconciles stock changes that originate outside the order
// pipeline: marketplace webhook callbacks and manual seller adjustments.
// Both paths go through the same mutator as checkout so every change lands
// in the ledger log.
type SyncService struct {
	scope    TransactionScope
	mutator  *StockMutator
	notifier shared.Notifier
	logger   *zap.Logger
}

// NewSyncService creates a SyncService
func NewSyncService(scope TransactionScope, mutator *StockMutator, notifier shared.Notifier, logger *zap.Logger) *SyncService {
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		scope:    scope,
		mutator:  mutator,
		notifier: notifier,
		logger:   logger,
	}
}

// StockLevel is one product's stock after a sync change. On the wire an
// inventory_update always carries a batch, so sync changes publish a
// one-element slice of these.
type StockLevel struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	NewStock    int       `json:"new_stock"`
}

// SyncMarketplaceStock reconciles a product to the absolute quantity a
// marketplace reported. The delta against current stock is applied through
// the ledger; a report matching current stock is a no-op and publishes
// nothing.
func (s *SyncService) SyncMarketplaceStock(ctx context.Context, externalID string, reported int) (*StockLevel, error) {
	if reported < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Marketplace reported negative stock %d for %q", reported, externalID))
	}

	var level *StockLevel
	var lowStock bool
	var product *catalog.Product

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.ProductRepo().FindByExternalID(ctx, externalID)
		if err != nil {
			return err
		}
		product = p

		delta := reported - p.Stock
		if delta == 0 {
			return nil
		}

		mutation := []StockMutation{{ProductID: p.ID, Quantity: abs(delta)}}
		var results []MutationResult
		if delta < 0 {
			results, err = s.mutator.Debit(ctx, repos, mutation, inventory.ReasonMarketplaceSync)
		} else {
			results, err = s.mutator.Credit(ctx, repos, mutation, inventory.ReasonMarketplaceSync)
		}
		if err != nil {
			return err
		}

		level = &StockLevel{
			ProductID:   results[0].ProductID,
			ProductName: results[0].ProductName,
			NewStock:    results[0].NewStock,
		}
		lowStock = results[0].LowStock
		return nil
	})
	if err != nil {
		return nil, err
	}

	if level == nil {
		// Reported quantity already matched
		return &StockLevel{ProductID: product.ID, ProductName: product.Name, NewStock: product.Stock}, nil
	}

	s.publishLevel(ctx, product.ShopID, level, lowStock)
	return level, nil
}

// AdjustStock applies a signed manual adjustment to a product
func (s *SyncService) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) (*StockLevel, error) {
	if delta == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}

	var level *StockLevel
	var lowStock bool
	var shopID uuid.UUID

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		shopID = p.ShopID

		mutation := []StockMutation{{ProductID: productID, Quantity: abs(delta)}}
		var results []MutationResult
		if delta < 0 {
			results, err = s.mutator.Debit(ctx, repos, mutation, inventory.ReasonManualAdjustment)
		} else {
			results, err = s.mutator.Credit(ctx, repos, mutation, inventory.ReasonManualAdjustment)
		}
		if err != nil {
			return err
		}

		level = &StockLevel{
			ProductID:   results[0].ProductID,
			ProductName: results[0].ProductName,
			NewStock:    results[0].NewStock,
		}
		lowStock = results[0].LowStock
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLevel(ctx, shopID, level, lowStock)
	return level, nil
}

// publishLevel announces a committed sync change. The inventory_update
// payload is a one-element batch so every inventory_update on the wire has
// the same shape regardless of origin.
func (s *SyncService) publishLevel(ctx context.Context, shopID uuid.UUID, level *StockLevel, lowStock bool) {
	channel := shared.ShopChannel(shopID)
	s.notifier.Publish(ctx, channel, shared.NewNotification(shared.KindInventoryUpdate, []StockLevel{*level}))
	if lowStock {
		s.notifier.Publish(ctx, channel, shared.NewNotification(shared.KindLowStock, *level))
	}

	s.logger.Debug("stock synced",
		zap.String("product_id", level.ProductID.String()),
		zap.Int("new_stock", level.NewStock),
	)
}

// LedgerAudit compares a product's tracked quantities against its movement
// log. Drift is the part of the quantity the log does not account for; for
// a product whose opening stock arrived through the ledger it is zero and
// stays zero.
type LedgerAudit struct {
	ProductID      uuid.UUID `json:"product_id"`
	Stock          int       `json:"stock"`
	LedgerQuantity int       `json:"ledger_quantity"`
	LedgerSum      int       `json:"ledger_sum"`
	Drift          int       `json:"drift"`
	Consistent     bool      `json:"consistent"`
}

// ReconcileProduct reads a product's stock, its ledger quantity, and the
// sum of its log deltas in one transaction. Consistent reports the
// lock-step invariant between Product.Stock and Inventory.Quantity.
func (s *SyncService) ReconcileProduct(ctx context.Context, productID uuid.UUID) (*LedgerAudit, error) {
	var audit *LedgerAudit

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		inv, err := repos.InventoryRepo().FindByProduct(ctx, productID)
		if err != nil {
			return err
		}
		sum, err := repos.LogRepo().SumDeltas(ctx, inv.ID)
		if err != nil {
			return err
		}

		audit = &LedgerAudit{
			ProductID:      productID,
			Stock:          p.Stock,
			LedgerQuantity: inv.Quantity,
			LedgerSum:      sum,
			Drift:          inv.Quantity - sum,
			Consistent:     p.Stock == inv.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return audit, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
