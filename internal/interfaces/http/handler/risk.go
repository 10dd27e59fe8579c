package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apprisk "github.com/sellerops/backend/internal/application/risk"
	"github.com/sellerops/backend/internal/interfaces/http/dto"
)

// RiskHandler exposes at-risk analysis and restock planning endpoints
type RiskHandler struct {
	BaseHandler
	risk *apprisk.Service
}

// NewRiskHandler creates a RiskHandler
func NewRiskHandler(risk *apprisk.Service) *RiskHandler {
	return &RiskHandler{risk: risk}
}

// AnalyzeShop handles GET /api/v1/shops/:id/at-risk. The response's engine
// field tells whether the external service or the local fallback scored it.
func (h *RiskHandler) AnalyzeShop(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	result, err := h.risk.AnalyzeShop(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RestockPlanRequest is the restock plan request body
type RestockPlanRequest struct {
	Budget decimal.Decimal `json:"budget" binding:"required"`
}

// GenerateRestockPlan handles POST /api/v1/shops/:id/restock-plan. When the
// optimization service is down, this returns 503 rather than degrading.
func (h *RiskHandler) GenerateRestockPlan(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	var req RestockPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	plan, err := h.risk.GenerateRestockPlan(c.Request.Context(), uuid.MustParse(idReq.ID), req.Budget)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plan)
}
