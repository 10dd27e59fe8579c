package order

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appinv "github.com/sellerops/backend/internal/application/inventory"
	"github.com/sellerops/backend/internal/domain/catalog"
	invdomain "github.com/sellerops/backend/internal/domain/inventory"
	"github.com/sellerops/backend/internal/domain/order"
	"github.com/sellerops/backend/internal/domain/shared"
)

// resolvedLine is a cart line bound to its canonical product
type resolvedLine struct {
	product  *catalog.Product
	quantity int
	price    decimal.Decimal
}

// IntakeService splits a multi-vendor cart into per-shop orders and debits
// stock atomically per shop. Each shop's order and its stock decrements are
// one transaction; shops are isolated from each other, so a cart touching
// three shops can legitimately end with two orders created and one
// rejected. Callers must treat the result as a per-shop outcome list.
type IntakeService struct {
	productRepo catalog.ProductRepository
	shopRepo    catalog.ShopRepository
	scope       appinv.TransactionScope
	mutator     *appinv.StockMutator
	notifier    shared.Notifier
	logger      *zap.Logger
}

// NewIntakeService creates an IntakeService
func NewIntakeService(
	productRepo catalog.ProductRepository,
	shopRepo catalog.ShopRepository,
	scope appinv.TransactionScope,
	mutator *appinv.StockMutator,
	notifier shared.Notifier,
	logger *zap.Logger,
) *IntakeService {
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{
		productRepo: productRepo,
		shopRepo:    shopRepo,
		scope:       scope,
		mutator:     mutator,
		notifier:    notifier,
		logger:      logger,
	}
}

// Checkout resolves, partitions, and places a cart. If any line item cannot
// be resolved to a canonical product, it fails with NOT_FOUND and creates
// nothing. Otherwise it creates one order per shop, each in its own
// transaction, and returns a per-shop outcome list.
func (s *IntakeService) Checkout(ctx context.Context, req CheckoutRequest) ([]ShopOutcome, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	lines, err := s.resolve(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	byShop := make(map[uuid.UUID][]resolvedLine)
	for _, line := range lines {
		byShop[line.product.ShopID] = append(byShop[line.product.ShopID], line)
	}

	// Stable shop ordering so a cart always processes the same way
	shopIDs := make([]uuid.UUID, 0, len(byShop))
	for shopID := range byShop {
		shopIDs = append(shopIDs, shopID)
	}
	sort.Slice(shopIDs, func(i, j int) bool {
		return shopIDs[i].String() < shopIDs[j].String()
	})

	outcomes := make([]ShopOutcome, 0, len(shopIDs))
	for _, shopID := range shopIDs {
		outcomes = append(outcomes, s.placeShopOrder(ctx, shopID, byShop[shopID], req))
	}

	return outcomes, nil
}

// placeShopOrder creates one shop's order plus its stock debits inside a
// single transaction. Failure here never rolls back other shops' committed
// orders from the same cart.
func (s *IntakeService) placeShopOrder(ctx context.Context, shopID uuid.UUID, lines []resolvedLine, req CheckoutRequest) ShopOutcome {
	outcome := ShopOutcome{ShopID: shopID}

	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.ShopName = shop.Name

	var created *order.Order
	var debited []appinv.MutationResult

	err = s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		debits := make([]appinv.StockMutation, 0, len(lines))
		items := make([]order.OrderItem, 0, len(lines))

		for _, line := range lines {
			debits = append(debits, appinv.StockMutation{
				ProductID: line.product.ID,
				Quantity:  line.quantity,
			})

			item, err := order.NewOrderItem(
				line.product.ID,
				line.product.Name,
				line.product.SKU,
				line.quantity,
				line.price,
				line.product.Cost,
			)
			if err != nil {
				return err
			}
			items = append(items, *item)
		}

		results, err := s.mutator.Debit(ctx, repos, debits, invdomain.ReasonOrderPlaced)
		if err != nil {
			return err
		}
		debited = results

		o, err := order.NewOrder(shopID, req.Platform, req.BuyerID, req.CustomerEmail, req.CustomerName, items)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		s.logger.Warn("shop order rejected",
			zap.String("shop_id", shopID.String()),
			zap.Error(err),
		)
		outcome.Err = err
		return outcome
	}

	outcome.Order = ToOrderResponse(created)
	s.publishPlaced(ctx, shop, created, debited)

	return outcome
}

// publishPlaced announces a committed order. Publication happens strictly
// after the transaction committed; subscribers never see an event for a
// rolled-back write.
func (s *IntakeService) publishPlaced(ctx context.Context, shop *catalog.Shop, o *order.Order, debited []appinv.MutationResult) {
	resp := ToOrderResponse(o)

	s.notifier.Publish(ctx, shared.ShopChannel(shop.ID), shared.NewNotification(shared.KindNewOrder, resp))
	s.notifier.Publish(ctx, shared.UserChannel(o.BuyerID), shared.NewNotification(shared.KindOrderCreated, resp))

	updates := make([]StockUpdate, 0, len(debited))
	for _, r := range debited {
		updates = append(updates, StockUpdate{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			NewStock:    r.NewStock,
		})
	}
	s.notifier.Publish(ctx, shared.ShopChannel(shop.ID), shared.NewNotification(shared.KindInventoryUpdate, updates))

	for _, r := range debited {
		if r.LowStock {
			s.notifier.Publish(ctx, shared.ShopChannel(shop.ID), shared.NewNotification(shared.KindLowStock, StockUpdate{
				ProductID:   r.ProductID,
				ProductName: r.ProductName,
				NewStock:    r.NewStock,
			}))
		}
	}

	o.ClearDomainEvents()
}

func (s *IntakeService) validate(req CheckoutRequest) error {
	if req.BuyerID == uuid.Nil {
		return shared.NewDomainError("INVALID_BUYER", "Buyer ID cannot be empty")
	}
	if req.CustomerEmail == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_EMAIL", "Customer email cannot be empty")
	}
	if req.Platform == "" {
		return shared.NewDomainError("INVALID_PLATFORM", "Platform cannot be empty")
	}
	if len(req.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cart cannot be empty")
	}

	computed := decimal.Zero
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
		if item.Price.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Item price cannot be negative")
		}
		computed = computed.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if !req.DeclaredTotal.IsZero() && !computed.Equal(req.DeclaredTotal) {
		return shared.NewDomainError("INVALID_TOTAL",
			fmt.Sprintf("Declared total %s does not match item total %s", req.DeclaredTotal, computed))
	}

	return nil
}

// resolve binds every cart line to a canonical product, checking the
// canonical id first and the marketplace external id second. Any
// unresolvable line fails the whole cart before any transaction opens.
func (s *IntakeService) resolve(ctx context.Context, items []CartItem) ([]resolvedLine, error) {
	lines := make([]resolvedLine, 0, len(items))

	for _, item := range items {
		product, err := s.lookupProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, resolvedLine{
			product:  product,
			quantity: item.Quantity,
			price:    item.Price,
		})
	}

	return lines, nil
}

func (s *IntakeService) lookupProduct(ctx context.Context, id string) (*catalog.Product, error) {
	if canonical, err := uuid.Parse(id); err == nil {
		product, err := s.productRepo.FindByID(ctx, canonical)
		if err == nil {
			return product, nil
		}
		if err != shared.ErrNotFound {
			return nil, err
		}
	}

	product, err := s.productRepo.FindByExternalID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %q not found", id))
		}
		return nil, err
	}
	return product, nil
}

// StockUpdate is the inventory_update / low_stock notification payload
type StockUpdate struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	NewStock    int       `json:"new_stock"`
}
