package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/application"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/middleware"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/tenant"
)

func (h *Handler) openShift(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.OpenShiftCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	cmd.OpenedBy = tenant.GetUserID(c.Request.Context())

	shift, err := h.shifts.OpenShift(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, shift)
}

func (h *Handler) getCurrentShift(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	shift, err := h.shifts.GetCurrentShift(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, shift)
}

func (h *Handler) closeShift(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.CloseShiftCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	cmd.ClosedBy = tenant.GetUserID(c.Request.Context())

	shift, err := h.shifts.CloseShift(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, shift)
}

func (h *Handler) recordShiftAdjustment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.ShiftAdjustmentCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	cmd.RecordedBy = tenant.GetUserID(c.Request.Context())

	shift, err := h.shifts.RecordAdjustment(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, shift)
}
