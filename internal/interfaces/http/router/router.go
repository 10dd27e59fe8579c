package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sellerops/backend/internal/infrastructure/auth"
	"github.com/sellerops/backend/internal/infrastructure/logger"
	"github.com/sellerops/backend/internal/interfaces/http/handler"
	"github.com/sellerops/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the handlers the router wires up
type Handlers struct {
	System    *handler.SystemHandler
	Orders    *handler.OrderHandler
	Inventory *handler.InventoryHandler
	Risk      *handler.RiskHandler
	Events    *handler.EventsHandler
}

// Setup builds the gin engine with all middleware and routes. Webhook and
// health endpoints skip JWT auth; the webhook boundary is authenticated
// upstream by the ingestion layer.
func Setup(handlers Handlers, tokens *auth.TokenService, log *zap.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	engine.GET("/health", handlers.System.Health)
	engine.GET("/ready", handlers.System.Ready)

	api := engine.Group("/api/v1")

	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/inventory", handlers.Inventory.StockWebhook)
	}

	authed := api.Group("")
	authed.Use(middleware.JWTAuth(tokens))
	{
		authed.POST("/orders/checkout", handlers.Orders.Checkout)
		authed.GET("/orders", handlers.Orders.ListMyOrders)
		authed.GET("/orders/:id", handlers.Orders.GetOrder)
		authed.PUT("/orders/:id/status", handlers.Orders.UpdateStatus)

		authed.GET("/shops/:id/orders", handlers.Orders.ListShopOrders)
		authed.GET("/shops/:id/at-risk", handlers.Risk.AnalyzeShop)
		authed.POST("/shops/:id/restock-plan", handlers.Risk.GenerateRestockPlan)

		authed.POST("/products/:id/stock-adjustments", handlers.Inventory.AdjustStock)
		authed.GET("/products/:id/ledger", handlers.Inventory.ReconcileLedger)

		authed.GET("/events", handlers.Events.Stream)
	}

	return engine
}
