package inventory

import (
	"context"

	"github.com/sellerops/backend/internal/domain/catalog"
	"github.com/sellerops/backend/internal/domain/inventory"
	"github.com/sellerops/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the repositories the
// stock mutator and order pipeline touch. When a function is executed within
// a scope, all repository operations share one database transaction and
// commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. Stock decrements and the order write for one shop go through
// the same instance so they commit or fail together.
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// InventoryRepo returns the inventory record repository scoped to the current transaction
	InventoryRepo() inventory.InventoryRepository
	// LogRepo returns the append-only ledger log repository scoped to the current transaction
	LogRepo() inventory.InventoryLogRepository
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.OrderRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing.
type NoOpTransactionScope struct {
	productRepo   catalog.ProductRepository
	inventoryRepo inventory.InventoryRepository
	logRepo       inventory.InventoryLogRepository
	orderRepo     order.OrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	inventoryRepo inventory.InventoryRepository,
	logRepo inventory.InventoryLogRepository,
	orderRepo order.OrderRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		logRepo:       logRepo,
		orderRepo:     orderRepo,
	}
}

// Execute runs the function without a real transaction (for testing).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// InventoryRepo returns the inventory record repository.
func (s *NoOpTransactionScope) InventoryRepo() inventory.InventoryRepository {
	return s.inventoryRepo
}

// LogRepo returns the ledger log repository.
func (s *NoOpTransactionScope) LogRepo() inventory.InventoryLogRepository {
	return s.logRepo
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository {
	return s.orderRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
