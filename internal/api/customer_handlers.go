package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/middleware"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/tenant"
)

func (h *Handler) getCustomer(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	tenantID := tenant.GetTenantID(c.Request.Context())

	customer, err := h.loyalty.GetCustomer(c.Request.Context(), tenantID, c.Param("customerId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, customer)
}
