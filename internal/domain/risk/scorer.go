package risk

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sellerops/backend/internal/domain/catalog"
)

// Thresholds configure the rule-based scoring
type Thresholds struct {
	LowStock       int // stock at or below this is low (default 5)
	NearExpiryDays int // days-to-expiry at or below this is near expiry (default 7)
	SalesWindow    int // days of order history considered (default 30)
}

// DefaultThresholds returns the standard scoring thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowStock:       5,
		NearExpiryDays: 7,
		SalesWindow:    30,
	}
}

// SalesStat aggregates a product's sales inside the scoring window
type SalesStat struct {
	QuantitySold int
	SaleDays     int // distinct days with at least one sale
}

// AtRiskItem is a derived, non-persisted scoring result. It carries the
// same fields and units as the external optimization service's response so
// downstream consumers are agnostic to which engine produced it.
type AtRiskItem struct {
	ProductID         uuid.UUID         `json:"product_id"`
	SKU               string            `json:"sku"`
	Name              string            `json:"name"`
	CurrentQuantity   int               `json:"current_quantity"`
	Score             int               `json:"score"` // 0-100
	Reasons           []Reason          `json:"reasons"`
	DaysToExpiry      *int              `json:"days_to_expiry,omitempty"`
	AvgDailySales     *float64          `json:"avg_daily_sales,omitempty"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
}

// Scorer is the deterministic rule-based fallback for the external
// optimization service. Identical (products, sales, thresholds, now) input
// always yields identical output.
type Scorer struct {
	thresholds Thresholds
}

// NewScorer creates a scorer with the given thresholds
func NewScorer(thresholds Thresholds) *Scorer {
	if thresholds.LowStock <= 0 {
		thresholds.LowStock = DefaultThresholds().LowStock
	}
	if thresholds.NearExpiryDays <= 0 {
		thresholds.NearExpiryDays = DefaultThresholds().NearExpiryDays
	}
	if thresholds.SalesWindow <= 0 {
		thresholds.SalesWindow = DefaultThresholds().SalesWindow
	}
	return &Scorer{thresholds: thresholds}
}

// Thresholds returns the scorer's configured thresholds
func (s *Scorer) Thresholds() Thresholds {
	return s.thresholds
}

// Score evaluates all products against the rules. Products with no reasons
// are excluded; results are sorted by score descending with product ID as a
// stable tiebreak.
func (s *Scorer) Score(now time.Time, products []catalog.Product, sales map[uuid.UUID]SalesStat) []AtRiskItem {
	items := make([]AtRiskItem, 0)

	for i := range products {
		p := &products[i]
		if item, flagged := s.scoreProduct(now, p, sales[p.ID]); flagged {
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Score != items[b].Score {
			return items[a].Score > items[b].Score
		}
		return items[a].ProductID.String() < items[b].ProductID.String()
	})

	return items
}

func (s *Scorer) scoreProduct(now time.Time, p *catalog.Product, stat SalesStat) (AtRiskItem, bool) {
	item := AtRiskItem{
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		CurrentQuantity: p.Stock,
		Reasons:         make([]Reason, 0, 2),
	}

	score := 0

	if dte, ok := p.DaysToExpiry(now); ok {
		item.DaysToExpiry = &dte
		if dte <= 0 {
			item.Reasons = append(item.Reasons, ReasonExpired)
			score += 100
		} else if dte <= s.thresholds.NearExpiryDays {
			item.Reasons = append(item.Reasons, ReasonNearExpiry)
			score += 30
			if dte <= 3 {
				score += 20
			}
		}
	}

	if p.Stock <= s.thresholds.LowStock {
		item.Reasons = append(item.Reasons, ReasonLowStock)
		score += 50
	} else if stat.QuantitySold == 0 && p.Stock > 0 && len(item.Reasons) == 0 {
		// Slow-moving only applies when nothing else already flags the
		// product; the expiry branches take precedence.
		item.Reasons = append(item.Reasons, ReasonSlowMoving)
		score += 20
		zero := 0.0
		item.AvgDailySales = &zero
	}

	if len(item.Reasons) == 0 {
		return AtRiskItem{}, false
	}

	if item.AvgDailySales == nil && stat.QuantitySold > 0 {
		avg := float64(stat.QuantitySold) / float64(s.thresholds.SalesWindow)
		item.AvgDailySales = &avg
	}

	item.Score = clampScore(score)
	item.RecommendedAction = s.recommend(&item)

	return item, true
}

// recommend derives the single recommended action by reason priority.
// The switch is exhaustive over the reason enum; an unmatched combination
// falls through to review explicitly, never by typo.
func (s *Scorer) recommend(item *AtRiskItem) RecommendedAction {
	switch primaryReason(item.Reasons) {
	case ReasonExpired:
		return RecommendedAction{
			Type:          ActionClearance,
			Reasoning:     fmt.Sprintf("%s has expired; clear remaining %d units at a deep discount", item.Name, item.CurrentQuantity),
			DiscountRange: &DiscountRange{50, 70},
		}
	case ReasonNearExpiry:
		dr := DiscountRange{15, 30}
		if item.DaysToExpiry != nil && *item.DaysToExpiry <= 3 {
			dr = DiscountRange{30, 50}
		}
		return RecommendedAction{
			Type:          ActionPromotion,
			Reasoning:     fmt.Sprintf("%s expires in %d days; promote before it becomes unsellable", item.Name, derefInt(item.DaysToExpiry)),
			DiscountRange: &dr,
		}
	case ReasonLowStock:
		qty := 3 * s.thresholds.LowStock
		if qty < 20 {
			qty = 20
		}
		return RecommendedAction{
			Type:       ActionRestock,
			Reasoning:  fmt.Sprintf("%s is down to %d units; restock before it sells out", item.Name, item.CurrentQuantity),
			RestockQty: &qty,
		}
	case ReasonSlowMoving:
		return RecommendedAction{
			Type:          ActionPromotion,
			Reasoning:     fmt.Sprintf("%s had no sales in the last %d days; promote to move stock", item.Name, s.thresholds.SalesWindow),
			DiscountRange: &DiscountRange{20, 40},
		}
	}
	return RecommendedAction{
		Type:      ActionReview,
		Reasoning: fmt.Sprintf("%s was flagged for manual review", item.Name),
	}
}

// primaryReason picks the highest-priority reason present:
// expired > near_expiry > low_stock > slow_moving.
func primaryReason(reasons []Reason) Reason {
	priority := []Reason{ReasonExpired, ReasonNearExpiry, ReasonLowStock, ReasonSlowMoving}
	for _, p := range priority {
		for _, r := range reasons {
			if r == p {
				return p
			}
		}
	}
	return ""
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
