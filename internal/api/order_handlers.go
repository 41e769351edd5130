package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/application"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/middleware"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/tenant"
)

func (h *Handler) createOrder(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.CreateOrderCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	result, err := h.orders.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handler) getOrder(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) listOrders(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var query application.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responder.RespondBadRequest("invalid query parameters: " + err.Error())
		return
	}

	result, err := h.orders.ListOrders(c.Request.Context(), query)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.UpdateStatusCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	cmd.OrderID = c.Param("orderId")

	result, err := h.orders.UpdateStatus(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) payOrder(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.PayOrderCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	cmd.OrderID = c.Param("orderId")

	result, err := h.orders.PayOrder(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) mergeOrders(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.MergeOrdersCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	cmd.MergedBy = tenant.GetUserID(c.Request.Context())

	result, err := h.orders.MergeOrders(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	cmd := application.DeleteOrderCommand{OrderID: c.Param("orderId")}

	if err := h.orders.DeleteOrder(c.Request.Context(), cmd); err != nil {
		responder.RespondWithError(err)
		return
	}

	c.Status(http.StatusNoContent)
}
