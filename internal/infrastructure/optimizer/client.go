package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	riskapp "github.com/sellerops/backend/internal/application/risk"
	"github.com/sellerops/backend/internal/domain/risk"
	"github.com/sellerops/backend/internal/domain/shared"
	"github.com/sellerops/backend/internal/infrastructure/config"
)

// maxResponseSize is the maximum allowed response size from the service (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client talks to the external optimization service over HTTP. Timeouts and
// non-2xx responses map to ErrServiceUnavailable so callers can fall back to
// the local scoring engine.
type Client struct {
	baseURL    string
	healthPath string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an optimization service client. Returns an error when no
// base URL is configured.
func NewClient(cfg config.OptimizerConfig, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("optimizer: base URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = "/health"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		healthPath: healthPath,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Healthy probes the service's health endpoint. Any failure, including a
// non-2xx status, reports unhealthy.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.healthPath, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("optimizer health probe failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// atRiskResponse is the service's analysis response. Scores arrive on a 0-1
// scale and are normalized before leaving this package.
type atRiskResponse struct {
	AtRisk []externalItem `json:"at_risk"`
}

type externalItem struct {
	ProductID         string                 `json:"product_id"`
	SKU               string                 `json:"sku"`
	Name              string                 `json:"name"`
	Score             float64                `json:"score"` // 0-1
	Reasons           []string               `json:"reasons"`
	CurrentQuantity   int                    `json:"current_quantity"`
	DaysToExpiry      *int                   `json:"days_to_expiry,omitempty"`
	AvgDailySales     *float64               `json:"avg_daily_sales,omitempty"`
	RecommendedAction risk.RecommendedAction `json:"recommended_action"`
}

// AnalyzeInventory sends the shop snapshot for analysis and returns items in
// the same shape and units the local scoring engine produces.
func (c *Client) AnalyzeInventory(ctx context.Context, req riskapp.AnalyzeRequest) ([]risk.AtRiskItem, error) {
	var resp atRiskResponse
	if err := c.post(ctx, "/api/v1/analyze", req, &resp); err != nil {
		return nil, err
	}

	items := make([]risk.AtRiskItem, 0, len(resp.AtRisk))
	for _, e := range resp.AtRisk {
		item, err := normalizeItem(e)
		if err != nil {
			return nil, fmt.Errorf("optimizer: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// GenerateRestockPlan requests a budget-constrained restock plan
func (c *Client) GenerateRestockPlan(ctx context.Context, req riskapp.RestockPlanRequest) (*riskapp.RestockPlan, error) {
	var plan riskapp.RestockPlan
	if err := c.post(ctx, "/api/v1/restock-plan", req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// post sends a JSON request and decodes a JSON response, mapping transport
// and status failures to ErrServiceUnavailable.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("optimizer request failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return shared.ErrServiceUnavailable
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return shared.ErrServiceUnavailable
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("optimizer returned non-2xx status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return shared.ErrServiceUnavailable
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("optimizer: decoding response: %w", err)
	}
	return nil
}

// normalizeItem converts an external item to the shared at-risk shape:
// the 0-1 score becomes 0-100 and reason strings become typed reasons.
func normalizeItem(e externalItem) (risk.AtRiskItem, error) {
	productID, err := uuid.Parse(e.ProductID)
	if err != nil {
		return risk.AtRiskItem{}, fmt.Errorf("invalid product_id %q", e.ProductID)
	}

	reasons := make([]risk.Reason, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		reason := risk.Reason(r)
		if !reason.IsValid() {
			return risk.AtRiskItem{}, fmt.Errorf("unknown reason %q", r)
		}
		reasons = append(reasons, reason)
	}

	score := int(e.Score*100 + 0.5)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return risk.AtRiskItem{
		ProductID:         productID,
		SKU:               e.SKU,
		Name:              e.Name,
		CurrentQuantity:   e.CurrentQuantity,
		Score:             score,
		Reasons:           reasons,
		DaysToExpiry:      e.DaysToExpiry,
		AvgDailySales:     e.AvgDailySales,
		RecommendedAction: e.RecommendedAction,
	}, nil
}

var _ riskapp.OptimizerClient = (*Client)(nil)
