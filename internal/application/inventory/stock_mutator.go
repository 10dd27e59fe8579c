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

// StockMutation is one requested stock change; Quantity is always positive,
// the direction comes from calling Debit or Credit.
type StockMutation struct {
	ProductID uuid.UUID
	Quantity  int
}

// MutationResult describes one applied stock change after the fact
type MutationResult struct {
	ProductID   uuid.UUID
	ProductName string
	NewStock    int
	// LowStock is set when a debit left stock at or below the alert
	// threshold but still positive.
	LowStock bool
}

// StockMutator applies debits and credits to the ledger. It must run inside
// a TransactionalRepositories obtained from a TransactionScope so every
// mutation, its log row, and the caller's order write commit or fail as one.
// Stock is re-read with a row lock inside the transaction, never taken from
// a pre-fetched snapshot, so concurrent debits serialize on the row.
type StockMutator struct {
	lowStockThreshold int
	logger            *zap.Logger
}

// NewStockMutator creates a stock mutator with the given low-stock alert threshold
func NewStockMutator(lowStockThreshold int, logger *zap.Logger) *StockMutator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockMutator{
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

// Debit removes stock for every mutation or fails the whole batch. A fresh
// stock of zero fails with OUT_OF_STOCK; stock below the requested quantity
// fails with INSUFFICIENT_STOCK naming the product, available and requested
// amounts. Either failure aborts the enclosing transaction, leaving no
// partial decrements.
func (m *StockMutator) Debit(ctx context.Context, repos TransactionalRepositories, mutations []StockMutation, reason string) ([]MutationResult, error) {
	results := make([]MutationResult, 0, len(mutations))

	for _, mut := range mutations {
		if mut.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Debit quantity must be positive")
		}

		product, err := repos.ProductRepo().FindByIDForUpdate(ctx, mut.ProductID)
		if err != nil {
			return nil, err
		}

		if product.Stock == 0 {
			return nil, shared.NewDomainError("OUT_OF_STOCK",
				fmt.Sprintf("%s is out of stock", product.Name))
		}
		if product.Stock < mut.Quantity {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Insufficient stock for %s: %d available, %d requested",
					product.Name, product.Stock, mut.Quantity))
		}

		result, err := m.apply(ctx, repos, product, -mut.Quantity, reason)
		if err != nil {
			return nil, err
		}
		result.LowStock = result.NewStock > 0 && result.NewStock <= m.lowStockThreshold
		results = append(results, result)
	}

	return results, nil
}

// Credit restores stock for every mutation. Credits need no sufficiency
// check; they are used for cancel/return compensation and inbound sync.
func (m *StockMutator) Credit(ctx context.Context, repos TransactionalRepositories, mutations []StockMutation, reason string) ([]MutationResult, error) {
	results := make([]MutationResult, 0, len(mutations))

	for _, mut := range mutations {
		if mut.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Credit quantity must be positive")
		}

		product, err := repos.ProductRepo().FindByIDForUpdate(ctx, mut.ProductID)
		if err != nil {
			return nil, err
		}

		result, err := m.apply(ctx, repos, product, mut.Quantity, reason)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// apply mutates Product.Stock and Inventory.Quantity in lock-step and
// appends the ledger log row. The product was already read with a row lock
// inside the current transaction.
func (m *StockMutator) apply(ctx context.Context, repos TransactionalRepositories, product *catalog.Product, delta int, reason string) (MutationResult, error) {
	product.Stock += delta
	if product.Stock < 0 {
		return MutationResult{}, shared.ErrInsufficientStock
	}
	if err := repos.ProductRepo().Save(ctx, product); err != nil {
		return MutationResult{}, err
	}

	inv, err := repos.InventoryRepo().FindByProductForUpdate(ctx, product.ID)
	if err != nil {
		return MutationResult{}, err
	}
	if err := inv.Apply(delta); err != nil {
		return MutationResult{}, err
	}
	if err := repos.InventoryRepo().Save(ctx, inv); err != nil {
		return MutationResult{}, err
	}

	entry, err := inventory.NewInventoryLog(inv.ID, delta, reason)
	if err != nil {
		return MutationResult{}, err
	}
	if err := repos.LogRepo().Append(ctx, entry); err != nil {
		return MutationResult{}, err
	}

	m.logger.Debug("stock mutated",
		zap.String("product_id", product.ID.String()),
		zap.Int("delta", delta),
		zap.Int("new_stock", product.Stock),
		zap.String("reason", reason),
	)

	return MutationResult{
		ProductID:   product.ID,
		ProductName: product.Name,
		NewStock:    product.Stock,
	}, nil
}
