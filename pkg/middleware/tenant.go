package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/errors"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/logging"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/tenant"
)

// Tenant header names
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderOutletID = "X-Outlet-ID"
	HeaderUserID   = "X-User-ID"
)

// TenantContext extracts tenant identifiers from request headers and
// injects them into the request context. Requests without a tenant ID
// are rejected; every repository query is scoped by it.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader(HeaderTenantID)
		if tenantID == "" {
			AbortWithAppError(c, errors.ErrUnauthorized("missing tenant identifier"))
			return
		}

		tc := &tenant.Context{
			TenantID: tenantID,
			OutletID: c.GetHeader(HeaderOutletID),
			UserID:   c.GetHeader(HeaderUserID),
		}

		ctx := tenant.ToContext(c.Request.Context(), tc)
		ctx = logging.ContextWithTenantID(ctx, tenantID)
		if tc.UserID != "" {
			ctx = logging.ContextWithUserID(ctx, tc.UserID)
		}
		if reqID := GetRequestID(c); reqID != "" {
			ctx = logging.ContextWithRequestID(ctx, reqID)
		}
		if corrID := GetCorrelationID(c); corrID != "" {
			ctx = logging.ContextWithCorrelationID(ctx, corrID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
