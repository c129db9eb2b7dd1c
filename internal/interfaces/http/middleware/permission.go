package middleware

import (
	"net/http"

	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/agencyhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
	// OnDenied replaces the default 401/403 response
	OnDenied func(c *gin.Context, required []identity.Permission)
}

// RequirePermission creates middleware that requires a specific permission
func RequirePermission(permission identity.Permission) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permission)
}

// RequireAnyPermission creates middleware that requires any of the
// specified permissions. Admins always pass.
func RequireAnyPermission(permissions ...identity.Permission) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permissions...)
}

// RequireAnyPermissionWithConfig is RequireAnyPermission with custom config
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...identity.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if !identity.HasAnyPermission(principal, permissions...) {
			handlePermissionDenied(c, cfg, principal, permissions)
			return
		}
		if cfg.Logger != nil {
			cfg.Logger.Debug("Permission check passed",
				zap.String("user_id", principal.UserID.String()),
				zap.Strings("required_any", permissionCodes(permissions)),
			)
		}
		c.Next()
	}
}

// RequireAdmin creates middleware that only lets admins through
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if !principal.IsAdmin() {
			handlePermissionDenied(c, PermissionConfig{}, principal, nil)
			return
		}
		c.Next()
	}
}

// HasPermission reports whether the caller holds permission
func HasPermission(c *gin.Context, permission identity.Permission) bool {
	return identity.HasPermission(GetPrincipal(c), permission)
}

func handlePermissionDenied(c *gin.Context, cfg PermissionConfig, principal *identity.Principal, required []identity.Permission) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, required)
		return
	}

	requestID := GetRequestID(c)
	if principal == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", requestID))
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("Permission denied",
			zap.String("user_id", principal.UserID.String()),
			zap.String("role", string(principal.Role)),
			zap.Strings("required_any", permissionCodes(required)),
			zap.String("path", c.Request.URL.Path),
		)
	}
	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "You do not have permission to perform this action", requestID))
}

func permissionCodes(perms []identity.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
