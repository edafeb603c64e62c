package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/peterkyalo/stock-inventory-sub002/pkg/auth"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/errors"
)

// Authentication validates the bearer token and binds the operator identity
// to the request context. Every core endpoint sits behind this middleware.
func Authentication(cfg auth.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			AbortWithAppError(c, errors.ErrUnauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			AbortWithAppError(c, errors.ErrUnauthorized("authorization header must be a bearer token"))
			return
		}

		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			AbortWithAppError(c, errors.ErrUnauthorized("invalid or expired token"))
			return
		}

		c.Set(ContextKeyOperatorID, claims.OperatorID)
		c.Set(ContextKeyOperatorRole, string(claims.Role))
		c.Set(ContextKeyCapabilities, claims)

		c.Next()
	}
}

// RequireCapability refuses requests whose operator lacks the capability.
// Role admin implies every capability.
func RequireCapability(cap auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, exists := c.Get(ContextKeyCapabilities)
		if !exists {
			AbortWithAppError(c, errors.ErrUnauthorized(""))
			return
		}

		claims, ok := val.(*auth.AccessTokenClaims)
		if !ok || !claims.HasCapability(cap) {
			AbortWithAppError(c, errors.ErrForbidden("capability "+string(cap)+" required"))
			return
		}

		c.Next()
	}
}
