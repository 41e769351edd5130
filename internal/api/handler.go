package api

import (
	"github.com/gin-gonic/gin"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/application"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/logging"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/middleware"
)

// Handler wires the application services to the Gin router. Every route is
// tenant-scoped: the tenant middleware rejects requests without X-Tenant-ID
// before any handler runs.
type Handler struct {
	orders    *application.OrderService
	inventory *application.InventoryService
	shifts    *application.ShiftService
	loyalty   *application.LoyaltyService
	logger    *logging.Logger
}

// NewHandler creates a new Handler
func NewHandler(
	orders *application.OrderService,
	inventory *application.InventoryService,
	shifts *application.ShiftService,
	loyalty *application.LoyaltyService,
	logger *logging.Logger,
) *Handler {
	return &Handler{
		orders:    orders,
		inventory: inventory,
		shifts:    shifts,
		loyalty:   loyalty,
		logger:    logger,
	}
}

// RegisterRoutes registers all API routes on the given group
func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.Use(middleware.TenantContext())

	orders := v1.Group("/orders")
	{
		orders.POST("", h.createOrder)
		orders.GET("", h.listOrders)
		orders.POST("/merge", h.mergeOrders)
		orders.GET("/:orderId", h.getOrder)
		orders.PUT("/:orderId/status", h.updateOrderStatus)
		orders.POST("/:orderId/pay", h.payOrder)
		orders.DELETE("/:orderId", h.deleteOrder)
	}

	ingredients := v1.Group("/ingredients")
	{
		ingredients.GET("/:ingredientId", h.getIngredient)
		ingredients.POST("/:ingredientId/restock", h.restockIngredient)
		ingredients.POST("/:ingredientId/adjust", h.adjustStock)
		ingredients.GET("/:ingredientId/history", h.getStockHistory)
	}

	v1.GET("/stock-history/top-usage", h.getTopUsage)

	shifts := v1.Group("/shifts")
	{
		shifts.POST("", h.openShift)
		shifts.GET("/current", h.getCurrentShift)
		shifts.POST("/current/close", h.closeShift)
		shifts.POST("/current/adjustments", h.recordShiftAdjustment)
	}

	v1.GET("/customers/:customerId", h.getCustomer)
}
