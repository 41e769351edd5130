package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/application"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/middleware"
)

func (h *Handler) getIngredient(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	ingredient, err := h.inventory.GetIngredient(c.Request.Context(), c.Param("ingredientId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, ingredient)
}

func (h *Handler) restockIngredient(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.RestockCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	cmd.IngredientID = c.Param("ingredientId")

	ingredient, err := h.inventory.Restock(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, ingredient)
}

func (h *Handler) adjustStock(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.AdjustStockCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	cmd.IngredientID = c.Param("ingredientId")

	ingredient, err := h.inventory.AdjustStock(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, ingredient)
}

func (h *Handler) getStockHistory(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var query application.StockHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responder.RespondBadRequest("invalid query parameters: " + err.Error())
		return
	}
	query.IngredientID = c.Param("ingredientId")

	entries, err := h.inventory.GetStockHistory(c.Request.Context(), query)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (h *Handler) getTopUsage(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var query application.TopUsageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responder.RespondBadRequest("invalid query parameters: " + err.Error())
		return
	}

	usage, err := h.inventory.TopUsage(c.Request.Context(), query)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"topUsage": usage})
}
