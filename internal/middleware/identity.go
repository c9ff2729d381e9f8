package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepdeck/prepdeck-backend/internal/response"
	"github.com/prepdeck/prepdeck-backend/internal/service"
)

const (
	// ContextKeyUserID is the Gin context key for the authenticated user ID.
	ContextKeyUserID = "user_id"
)

// RequireIdentity validates the signed identity cookie minted by the tracking
// handshake and stores the user ID on the context. Requests without a valid
// cookie are rejected; clients must call the /track endpoint first.
func RequireIdentity(identityService *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(service.IdentityCookieName)
		if err != nil || token == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrIdentityRequired)
			return
		}

		claims, err := identityService.ValidateToken(token)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrIdentityInvalid)
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// OptionalIdentity stores the user ID on the context when a valid identity
// cookie is present, and lets the request through either way. Used by the
// session WebSocket where anonymous practice is allowed.
func OptionalIdentity(identityService *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(service.IdentityCookieName)
		if err == nil && token != "" {
			if claims, err := identityService.ValidateToken(token); err == nil {
				c.Set(ContextKeyUserID, claims.UserID)
			}
		}
		c.Next()
	}
}

// GetUserID retrieves the authenticated user ID from the Gin context.
// Returns an empty string when no identity was established.
func GetUserID(c *gin.Context) string {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return ""
	}
	id, ok := val.(string)
	if !ok {
		return ""
	}
	return id
}
