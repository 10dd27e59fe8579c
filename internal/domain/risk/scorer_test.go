package risk

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerops/backend/internal/domain/catalog"
)

var scoreNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func makeProduct(t *testing.T, name string, stock int) catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(uuid.New(), "SKU-"+name, name,
		decimal.NewFromInt(10), decimal.NewFromInt(6), stock)
	require.NoError(t, err)
	return *p
}

func expiringIn(t *testing.T, name string, stock, days int) catalog.Product {
	t.Helper()
	p := makeProduct(t, name, stock)
	p.SetExpiryDate(scoreNow.Add(time.Duration(days) * 24 * time.Hour))
	return p
}

func TestScorer_NearExpiryOverridesSlowMoving(t *testing.T) {
	// Healthy stock, zero sales, expiring in 2 days: near_expiry alone
	// should flag the product, with the close-expiry bonus applied.
	scorer := NewScorer(DefaultThresholds())
	p := expiringIn(t, "Yogurt", 50, 2)

	items := scorer.Score(scoreNow, []catalog.Product{p}, nil)

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, []Reason{ReasonNearExpiry}, item.Reasons)
	assert.Equal(t, 50, item.Score)
	assert.Equal(t, ActionPromotion, item.RecommendedAction.Type)
	require.NotNil(t, item.RecommendedAction.DiscountRange)
	assert.Equal(t, DiscountRange{30, 50}, *item.RecommendedAction.DiscountRange)
	require.NotNil(t, item.DaysToExpiry)
	assert.Equal(t, 2, *item.DaysToExpiry)
}

func TestScorer_NearExpiryWithoutCloseBonus(t *testing.T) {
	scorer := NewScorer(DefaultThresholds())
	p := expiringIn(t, "Milk", 50, 6)

	items := scorer.Score(scoreNow, []catalog.Product{p}, map[uuid.UUID]SalesStat{
		p.ID: {QuantitySold: 12, SaleDays: 4},
	})

	require.Len(t, items, 1)
	assert.Equal(t, 30, items[0].Score)
	require.NotNil(t, items[0].RecommendedAction.DiscountRange)
	assert.Equal(t, DiscountRange{15, 30}, *items[0].RecommendedAction.DiscountRange)
}

func TestScorer_ExpiredGetsClearance(t *testing.T) {
	scorer := NewScorer(DefaultThresholds())
	p := expiringIn(t, "Cheese", 8, -1)

	items := scorer.Score(scoreNow, []catalog.Product{p}, nil)

	require.Len(t, items, 1)
	assert.Equal(t, []Reason{ReasonExpired}, items[0].Reasons)
	assert.Equal(t, 100, items[0].Score)
	assert.Equal(t, ActionClearance, items[0].RecommendedAction.Type)
	require.NotNil(t, items[0].RecommendedAction.DiscountRange)
	assert.Equal(t, DiscountRange{50, 70}, *items[0].RecommendedAction.DiscountRange)
}

func TestScorer_ScoreClampedAt100(t *testing.T) {
	// expired (+100) and low stock (+50) together still cap at 100
	scorer := NewScorer(DefaultThresholds())
	p := expiringIn(t, "Butter", 2, -5)

	items := scorer.Score(scoreNow, []catalog.Product{p}, nil)

	require.Len(t, items, 1)
	assert.Equal(t, 100, items[0].Score)
	assert.ElementsMatch(t, []Reason{ReasonExpired, ReasonLowStock}, items[0].Reasons)
	// expired outranks low_stock for the recommendation
	assert.Equal(t, ActionClearance, items[0].RecommendedAction.Type)
}

func TestScorer_LowStockRecommendsRestock(t *testing.T) {
	scorer := NewScorer(DefaultThresholds())
	p := makeProduct(t, "Soap", 3)

	items := scorer.Score(scoreNow, []catalog.Product{p}, map[uuid.UUID]SalesStat{
		p.ID: {QuantitySold: 30, SaleDays: 10},
	})

	require.Len(t, items, 1)
	assert.Equal(t, []Reason{ReasonLowStock}, items[0].Reasons)
	assert.Equal(t, 50, items[0].Score)
	assert.Equal(t, ActionRestock, items[0].RecommendedAction.Type)
	// 3x threshold (5) is below the floor of 20
	require.NotNil(t, items[0].RecommendedAction.RestockQty)
	assert.Equal(t, 20, *items[0].RecommendedAction.RestockQty)
	require.NotNil(t, items[0].AvgDailySales)
	assert.InDelta(t, 1.0, *items[0].AvgDailySales, 1e-9)
}

func TestScorer_RestockQtyScalesWithThreshold(t *testing.T) {
	scorer := NewScorer(Thresholds{LowStock: 10, NearExpiryDays: 7, SalesWindow: 30})
	p := makeProduct(t, "Rice", 9)

	items := scorer.Score(scoreNow, []catalog.Product{p}, nil)

	require.Len(t, items, 1)
	require.NotNil(t, items[0].RecommendedAction.RestockQty)
	assert.Equal(t, 30, *items[0].RecommendedAction.RestockQty)
}

func TestScorer_SlowMovingOnlyWhenNothingElseFlags(t *testing.T) {
	scorer := NewScorer(DefaultThresholds())
	p := makeProduct(t, "Lamp", 40)

	items := scorer.Score(scoreNow, []catalog.Product{p}, nil)

	require.Len(t, items, 1)
	assert.Equal(t, []Reason{ReasonSlowMoving}, items[0].Reasons)
	assert.Equal(t, 20, items[0].Score)
	assert.Equal(t, ActionPromotion, items[0].RecommendedAction.Type)
	require.NotNil(t, items[0].RecommendedAction.DiscountRange)
	assert.Equal(t, DiscountRange{20, 40}, *items[0].RecommendedAction.DiscountRange)
	require.NotNil(t, items[0].AvgDailySales)
	assert.Zero(t, *items[0].AvgDailySales)
}

func TestScorer_HealthyProductExcluded(t *testing.T) {
	scorer := NewScorer(DefaultThresholds())
	p := makeProduct(t, "Desk", 40)

	items := scorer.Score(scoreNow, []catalog.Product{p}, map[uuid.UUID]SalesStat{
		p.ID: {QuantitySold: 15, SaleDays: 8},
	})

	assert.Empty(t, items)
}

func TestScorer_SortsByScoreThenProductID(t *testing.T) {
	scorer := NewScorer(DefaultThresholds())

	lowA := makeProduct(t, "A", 2)
	lowB := makeProduct(t, "B", 4)
	slow := makeProduct(t, "C", 40)

	items := scorer.Score(scoreNow, []catalog.Product{slow, lowB, lowA}, nil)

	require.Len(t, items, 3)
	assert.Equal(t, 50, items[0].Score)
	assert.Equal(t, 50, items[1].Score)
	assert.Equal(t, 20, items[2].Score)
	// equal scores order by product ID string
	assert.Less(t, items[0].ProductID.String(), items[1].ProductID.String())
}

func TestScorer_Deterministic(t *testing.T) {
	scorer := NewScorer(DefaultThresholds())

	products := []catalog.Product{
		expiringIn(t, "Yogurt", 50, 2),
		makeProduct(t, "Soap", 3),
		makeProduct(t, "Lamp", 40),
	}
	sales := map[uuid.UUID]SalesStat{
		products[1].ID: {QuantitySold: 30, SaleDays: 10},
	}

	first := scorer.Score(scoreNow, products, sales)
	second := scorer.Score(scoreNow, products, sales)

	assert.Equal(t, first, second)
}

func TestNewScorer_SanitizesThresholds(t *testing.T) {
	scorer := NewScorer(Thresholds{})
	assert.Equal(t, DefaultThresholds(), scorer.Thresholds())
}

func TestPrimaryReason_Priority(t *testing.T) {
	assert.Equal(t, ReasonExpired, primaryReason([]Reason{ReasonLowStock, ReasonExpired}))
	assert.Equal(t, ReasonNearExpiry, primaryReason([]Reason{ReasonLowStock, ReasonNearExpiry}))
	assert.Equal(t, ReasonLowStock, primaryReason([]Reason{ReasonSlowMoving, ReasonLowStock}))
	assert.Equal(t, Reason(""), primaryReason(nil))
}
