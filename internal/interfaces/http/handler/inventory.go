package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinv "github.com/sellerops/backend/internal/application/inventory"
	"github.com/sellerops/backend/internal/interfaces/http/dto"
)

// InventoryHandler exposes stock sync and adjustment endpoints
type InventoryHandler struct {
	BaseHandler
	sync *appinv.SyncService
}

// NewInventoryHandler creates an InventoryHandler
func NewInventoryHandler(sync *appinv.SyncService) *InventoryHandler {
	return &InventoryHandler{sync: sync}
}

// StockWebhookRequest is a marketplace inventory sync callback. The payload
// arrives pre-authenticated at the webhook boundary with a resolved product
// reference and an absolute stock level.
type StockWebhookRequest struct {
	ExternalID string `json:"external_id" binding:"required"`
	Quantity   *int   `json:"quantity" binding:"required"`
}

// StockWebhook handles POST /api/v1/webhooks/inventory. Webhook-origin
// changes go through the same mutator and fanout as direct order intake.
func (h *InventoryHandler) StockWebhook(c *gin.Context) {
	var req StockWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	level, err := h.sync.SyncMarketplaceStock(c.Request.Context(), req.ExternalID, *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// AdjustStockRequest is a manual stock adjustment request
type AdjustStockRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

// AdjustStock handles POST /api/v1/products/:id/stock-adjustments
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	level, err := h.sync.AdjustStock(c.Request.Context(), uuid.MustParse(idReq.ID), *req.Delta)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// ReconcileLedger handles GET /api/v1/products/:id/ledger. It reports the
// product's stock against its ledger quantity and movement-log sum so
// operators can verify the two never drift apart.
func (h *InventoryHandler) ReconcileLedger(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	audit, err := h.sync.ReconcileProduct(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, audit)
}
