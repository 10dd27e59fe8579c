package risk

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerops/backend/internal/domain/risk"
)

// InventorySnapshot is one product's state as sent to the optimization service
type InventorySnapshot struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
}

// SaleRecord is one day's sales of one product inside the analysis window
type SaleRecord struct {
	ProductID uuid.UUID       `json:"product_id"`
	Date      string          `json:"date"` // YYYY-MM-DD
	Qty       int             `json:"qty"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// ThresholdsPayload mirrors the scoring thresholds on the wire
type ThresholdsPayload struct {
	LowStock         int `json:"low_stock"`
	ExpiryDays       int `json:"expiry_days"`
	SlowMovingWindow int `json:"slow_moving_window"`
}

// AnalyzeRequest is the optimization service's inventory analysis input
type AnalyzeRequest struct {
	ShopID     uuid.UUID           `json:"shop_id"`
	Inventory  []InventorySnapshot `json:"inventory"`
	Sales      []SaleRecord        `json:"sales"`
	Thresholds ThresholdsPayload   `json:"thresholds"`
}

// RestockPlanRequest asks the optimization service for a budget-constrained
// restock plan. There is no local equivalent for this computation.
type RestockPlanRequest struct {
	ShopID    uuid.UUID           `json:"shop_id"`
	Budget    decimal.Decimal     `json:"budget"`
	Inventory []InventorySnapshot `json:"inventory"`
	Sales     []SaleRecord        `json:"sales"`
}

// RestockPlanItem is one purchase line of a generated plan
type RestockPlanItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// RestockPlan is a budget-constrained purchase recommendation
type RestockPlan struct {
	ShopID    uuid.UUID         `json:"shop_id"`
	Budget    decimal.Decimal   `json:"budget"`
	TotalCost decimal.Decimal   `json:"total_cost"`
	Items     []RestockPlanItem `json:"items"`
	Notes     string            `json:"notes,omitempty"`
}

// Engine names which producer generated an analysis
type Engine string

const (
	// EngineExternal means the optimization service produced the result
	EngineExternal Engine = "external"
	// EngineRuleBased means the local deterministic fallback produced it
	EngineRuleBased Engine = "rule_based"
)

// AnalysisResult is the at-risk analysis as presented to callers. Items have
// the same shape and units regardless of engine.
type AnalysisResult struct {
	ShopID       uuid.UUID         `json:"shop_id"`
	Engine       Engine            `json:"engine"`
	AnalysisDate time.Time         `json:"analysis_date"`
	Items        []risk.AtRiskItem `json:"at_risk"`
}
