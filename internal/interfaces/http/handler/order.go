package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apporder "github.com/sellerops/backend/internal/application/order"
	"github.com/sellerops/backend/internal/domain/order"
	"github.com/sellerops/backend/internal/domain/shared"
	"github.com/sellerops/backend/internal/interfaces/http/dto"
	"github.com/sellerops/backend/internal/interfaces/http/middleware"
)

// OrderHandler exposes order intake and status endpoints
type OrderHandler struct {
	BaseHandler
	intake *apporder.IntakeService
	status *apporder.StatusService
}

// NewOrderHandler creates an OrderHandler
func NewOrderHandler(intake *apporder.IntakeService, status *apporder.StatusService) *OrderHandler {
	return &OrderHandler{intake: intake, status: status}
}

// CheckoutRequest is the order intake request body
type CheckoutRequest struct {
	CustomerName string          `json:"customer_name" binding:"required"`
	Platform     string          `json:"platform" binding:"required"`
	Items        []CheckoutItem  `json:"items" binding:"required,min=1,dive"`
	Total        decimal.Decimal `json:"total"`
}

// CheckoutItem is one cart line in the request body
type CheckoutItem struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Price     decimal.Decimal `json:"price" binding:"required"`
}

// ShopOutcomeResponse is the per-shop checkout result on the wire
type ShopOutcomeResponse struct {
	ShopID   uuid.UUID               `json:"shop_id"`
	ShopName string                  `json:"shop_name,omitempty"`
	Order    *apporder.OrderResponse `json:"order,omitempty"`
	Error    *dto.ErrorInfo          `json:"error,omitempty"`
}

// Checkout handles POST /api/v1/orders/checkout. A multi-shop cart returns
// one outcome per shop; a partial failure still responds 201 Created, with
// the rejected shops' outcomes carrying an error instead of an order.
func (h *OrderHandler) Checkout(c *gin.Context) {
	buyerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	items := make([]apporder.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, apporder.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	outcomes, err := h.intake.Checkout(c.Request.Context(), apporder.CheckoutRequest{
		BuyerID:       buyerID,
		CustomerEmail: middleware.GetUserEmail(c),
		CustomerName:  req.CustomerName,
		Platform:      req.Platform,
		Items:         items,
		DeclaredTotal: req.Total,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ShopOutcomeResponse, 0, len(outcomes))
	for _, outcome := range outcomes {
		resp := ShopOutcomeResponse{
			ShopID:   outcome.ShopID,
			ShopName: outcome.ShopName,
			Order:    outcome.Order,
		}
		if outcome.Err != nil {
			resp.Error = outcomeError(outcome.Err)
		}
		responses = append(responses, resp)
	}

	h.Created(c, responses)
}

// UpdateStatusRequest is the status transition request body
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PUT /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, err := h.actorFromContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	orderID := uuid.MustParse(idReq.ID)

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	updated, err := h.status.UpdateStatus(c.Request.Context(), orderID, actor, order.OrderStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, updated)
}

// GetOrder handles GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	actor, err := h.actorFromContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.status.GetOrder(c.Request.Context(), uuid.MustParse(idReq.ID), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListMyOrders handles GET /api/v1/orders for the authenticated buyer
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	actor, err := h.actorFromContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orders, err := h.status.ListBuyerOrders(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, orders)
}

// ListShopOrders handles GET /api/v1/shops/:id/orders for the shop owner
func (h *OrderHandler) ListShopOrders(c *gin.Context) {
	actor, err := h.actorFromContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	orders, err := h.status.ListShopOrders(c.Request.Context(), uuid.MustParse(idReq.ID), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, orders)
}

// actorFromContext builds the acting identity from JWT claims
func (h *OrderHandler) actorFromContext(c *gin.Context) (apporder.ActorRef, error) {
	userID, err := getUserID(c)
	if err != nil {
		return apporder.ActorRef{}, err
	}

	role := order.Actor(middleware.GetUserRole(c))
	if !role.IsValid() {
		return apporder.ActorRef{}, shared.ErrUnauthorized
	}

	return apporder.ActorRef{
		UserID: userID,
		Email:  middleware.GetUserEmail(c),
		Role:   role,
	}, nil
}

// outcomeError maps a per-shop failure to wire error info
func outcomeError(err error) *dto.ErrorInfo {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return &dto.ErrorInfo{
			Code:    dto.NormalizeErrorCode(domainErr.Code),
			Message: domainErr.Message,
		}
	}
	return &dto.ErrorInfo{
		Code:    dto.ErrCodeInternal,
		Message: "An unexpected error occurred",
	}
}
