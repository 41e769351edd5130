package tenant

import (
	"context"
	"errors"
)

// Context keys for tenant information
type contextKey string

const (
	tenantIDKey contextKey = "tenantId"
	outletIDKey contextKey = "outletId"
	userIDKey   contextKey = "userId"
)

// Errors for tenant context operations
var (
	ErrMissingTenantContext = errors.New("tenant context is required")
	ErrUnauthorizedAccess   = errors.New("unauthorized access to tenant resource")
	ErrMissingTenantID      = errors.New("tenantId is required")
)

// Context holds the tenant identifiers for multi-tenant operations.
// This struct is used to scope all database queries to a specific business.
type Context struct {
	// TenantID is the business identifier (the cafe/restaurant owner account)
	TenantID string `json:"tenantId"`

	// OutletID is a specific outlet/branch within the business
	OutletID string `json:"outletId"`

	// UserID is the cashier or staff member performing the operation
	UserID string `json:"userId"`
}

// FromContext extracts the tenant Context from context.Context.
// Returns an error if no tenant ID is present.
func FromContext(ctx context.Context) (*Context, error) {
	tc := &Context{}

	if v := ctx.Value(tenantIDKey); v != nil {
		if id, ok := v.(string); ok {
			tc.TenantID = id
		}
	}
	if v := ctx.Value(outletIDKey); v != nil {
		if id, ok := v.(string); ok {
			tc.OutletID = id
		}
	}
	if v := ctx.Value(userIDKey); v != nil {
		if id, ok := v.(string); ok {
			tc.UserID = id
		}
	}

	if tc.TenantID == "" {
		return nil, ErrMissingTenantContext
	}

	return tc, nil
}

// FromContextOptional extracts the tenant Context from context.Context.
// Unlike FromContext, this returns an empty context if none exists.
func FromContextOptional(ctx context.Context) *Context {
	tc, _ := FromContext(ctx)
	if tc == nil {
		return &Context{}
	}
	return tc
}

// ToContext adds tenant Context values to context.Context.
func ToContext(ctx context.Context, tc *Context) context.Context {
	if tc == nil {
		return ctx
	}

	if tc.TenantID != "" {
		ctx = context.WithValue(ctx, tenantIDKey, tc.TenantID)
	}
	if tc.OutletID != "" {
		ctx = context.WithValue(ctx, outletIDKey, tc.OutletID)
	}
	if tc.UserID != "" {
		ctx = context.WithValue(ctx, userIDKey, tc.UserID)
	}

	return ctx
}

// WithTenantID returns a new context with the tenant ID set
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// WithOutletID returns a new context with the outlet ID set
func WithOutletID(ctx context.Context, outletID string) context.Context {
	return context.WithValue(ctx, outletIDKey, outletID)
}

// WithUserID returns a new context with the user ID set
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetTenantID extracts tenant ID from context
func GetTenantID(ctx context.Context) string {
	if v := ctx.Value(tenantIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetOutletID extracts outlet ID from context
func GetOutletID(ctx context.Context) string {
	if v := ctx.Value(outletIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	if v := ctx.Value(userIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// IsEmpty returns true if the context has no tenant identifiers set
func (tc *Context) IsEmpty() bool {
	return tc.TenantID == "" && tc.OutletID == "" && tc.UserID == ""
}

// HasTenant returns true if a tenant ID is set
func (tc *Context) HasTenant() bool {
	return tc.TenantID != ""
}

// HasOutlet returns true if an outlet ID is set
func (tc *Context) HasOutlet() bool {
	return tc.OutletID != ""
}

// Validate checks that the required tenant context fields are present.
func (tc *Context) Validate() error {
	if tc.TenantID == "" {
		return ErrMissingTenantID
	}
	return nil
}

// ValidateOwnership verifies that a resource belongs to this tenant context.
// Used to prevent cross-tenant data access.
func (tc *Context) ValidateOwnership(resourceTenantID string) error {
	if tc.TenantID != "" && resourceTenantID != "" && tc.TenantID != resourceTenantID {
		return ErrUnauthorizedAccess
	}
	return nil
}
