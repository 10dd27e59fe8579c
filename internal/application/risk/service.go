package risk

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sellerops/backend/internal/domain/catalog"
	"github.com/sellerops/backend/internal/domain/order"
	"github.com/sellerops/backend/internal/domain/risk"
	"github.com/sellerops/backend/internal/domain/shared"
)

// OptimizerClient is the port to the external optimization service.
// Implementations must return ErrServiceUnavailable for timeouts and non-2xx
// responses so callers can decide between fallback and surfacing the error.
type OptimizerClient interface {
	// Healthy probes the service's health endpoint
	Healthy(ctx context.Context) bool
	// AnalyzeInventory returns at-risk items with scores already normalized
	// to the 0-100 scale.
	AnalyzeInventory(ctx context.Context, req AnalyzeRequest) ([]risk.AtRiskItem, error)
	// GenerateRestockPlan returns a budget-constrained purchase plan
	GenerateRestockPlan(ctx context.Context, req RestockPlanRequest) (*RestockPlan, error)
}

// Service runs at-risk analysis with graceful degradation: the external
// optimization service is tried first, and the deterministic rule-based
// scorer takes over when it is unreachable. Restock planning has no local
// equivalent, so unavailability there surfaces to the caller.
type Service struct {
	productRepo catalog.ProductRepository
	orderRepo   order.OrderRepository
	optimizer   OptimizerClient
	scorer      *risk.Scorer
	notifier    shared.Notifier
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a risk Service. optimizer may be nil, in which case
// analysis always uses the rule-based engine and restock planning is
// unavailable.
func NewService(
	productRepo catalog.ProductRepository,
	orderRepo order.OrderRepository,
	optimizer OptimizerClient,
	scorer *risk.Scorer,
	notifier shared.Notifier,
	logger *zap.Logger,
) *Service {
	if scorer == nil {
		scorer = risk.NewScorer(risk.DefaultThresholds())
	}
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		optimizer:   optimizer,
		scorer:      scorer,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// AnalyzeShop scores a shop's inventory. The external engine is used when
// its health probe passes and its call succeeds; anything else degrades to
// the local scorer, never to an error.
func (s *Service) AnalyzeShop(ctx context.Context, shopID uuid.UUID) (*AnalysisResult, error) {
	now := s.now()
	thresholds := s.scorer.Thresholds()

	products, err := s.productRepo.FindByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	since := now.AddDate(0, 0, -thresholds.SalesWindow)
	orders, err := s.orderRepo.FindByShopSince(ctx, shopID, since)
	if err != nil {
		return nil, err
	}

	sales := aggregateSales(orders)

	if s.optimizer != nil && s.optimizer.Healthy(ctx) {
		req := s.buildAnalyzeRequest(shopID, products, orders, thresholds)
		items, err := s.optimizer.AnalyzeInventory(ctx, req)
		if err == nil {
			return &AnalysisResult{
				ShopID:       shopID,
				Engine:       EngineExternal,
				AnalysisDate: now,
				Items:        items,
			}, nil
		}
		s.logger.Warn("optimization service call failed, using rule-based fallback",
			zap.String("shop_id", shopID.String()),
			zap.Error(err),
		)
	}

	return &AnalysisResult{
		ShopID:       shopID,
		Engine:       EngineRuleBased,
		AnalysisDate: now,
		Items:        s.scorer.Score(now, products, sales),
	}, nil
}

// GenerateRestockPlan asks the external service for a budget-constrained
// plan. Unavailability is surfaced directly; there is no fallback.
func (s *Service) GenerateRestockPlan(ctx context.Context, shopID uuid.UUID, budget decimal.Decimal) (*RestockPlan, error) {
	if budget.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_BUDGET", "Restock budget must be positive")
	}
	if s.optimizer == nil || !s.optimizer.Healthy(ctx) {
		return nil, shared.ErrServiceUnavailable
	}

	now := s.now()
	thresholds := s.scorer.Thresholds()

	products, err := s.productRepo.FindByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	since := now.AddDate(0, 0, -thresholds.SalesWindow)
	orders, err := s.orderRepo.FindByShopSince(ctx, shopID, since)
	if err != nil {
		return nil, err
	}

	analyzeReq := s.buildAnalyzeRequest(shopID, products, orders, thresholds)
	plan, err := s.optimizer.GenerateRestockPlan(ctx, RestockPlanRequest{
		ShopID:    shopID,
		Budget:    budget,
		Inventory: analyzeReq.Inventory,
		Sales:     analyzeReq.Sales,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, shared.ShopChannel(shopID), shared.NewNotification(shared.KindRestockPlan, plan))

	return plan, nil
}

func (s *Service) buildAnalyzeRequest(shopID uuid.UUID, products []catalog.Product, orders []order.Order, t risk.Thresholds) AnalyzeRequest {
	inventory := make([]InventorySnapshot, 0, len(products))
	for i := range products {
		p := &products[i]
		inventory = append(inventory, InventorySnapshot{
			ProductID:  p.ID,
			Quantity:   p.Stock,
			Price:      p.Price,
			ExpiryDate: p.ExpiryDate,
		})
	}

	return AnalyzeRequest{
		ShopID:    shopID,
		Inventory: inventory,
		Sales:     flattenSales(orders),
		Thresholds: ThresholdsPayload{
			LowStock:         t.LowStock,
			ExpiryDays:       t.NearExpiryDays,
			SlowMovingWindow: t.SalesWindow,
		},
	}
}

// aggregateSales reduces the order history to per-product quantity sold and
// distinct sale days. Cancellation-class orders do not count as demand.
func aggregateSales(orders []order.Order) map[uuid.UUID]risk.SalesStat {
	type acc struct {
		qty  int
		days map[string]struct{}
	}
	byProduct := make(map[uuid.UUID]*acc)

	for _, o := range orders {
		if o.Status.IsCancellation() {
			continue
		}
		day := o.CreatedAt.Format("2006-01-02")
		for _, item := range o.Items {
			a := byProduct[item.ProductID]
			if a == nil {
				a = &acc{days: make(map[string]struct{})}
				byProduct[item.ProductID] = a
			}
			a.qty += item.Quantity
			a.days[day] = struct{}{}
		}
	}

	stats := make(map[uuid.UUID]risk.SalesStat, len(byProduct))
	for id, a := range byProduct {
		stats[id] = risk.SalesStat{QuantitySold: a.qty, SaleDays: len(a.days)}
	}
	return stats
}

// flattenSales converts the order history to the wire format the
// optimization service expects: one record per (product, day).
func flattenSales(orders []order.Order) []SaleRecord {
	type key struct {
		productID uuid.UUID
		date      string
	}
	merged := make(map[key]*SaleRecord)
	keys := make([]key, 0)

	for _, o := range orders {
		if o.Status.IsCancellation() {
			continue
		}
		day := o.CreatedAt.Format("2006-01-02")
		for _, item := range o.Items {
			k := key{productID: item.ProductID, date: day}
			rec := merged[k]
			if rec == nil {
				rec = &SaleRecord{ProductID: item.ProductID, Date: day}
				merged[k] = rec
				keys = append(keys, k)
			}
			rec.Qty += item.Quantity
			rec.Revenue = rec.Revenue.Add(item.Amount)
		}
	}

	records := make([]SaleRecord, 0, len(keys))
	for _, k := range keys {
		records = append(records, *merged[k])
	}
	return records
}
