package http

import (
	"net/http"
	"strings"

	"order-service/internal/domain"
	"order-service/internal/infra"

	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	tokenKey    = "token"
)

// AuthRequired validates the bearer token against the remote introspection
// service and stores the resolved identity in the request context.
func AuthRequired(auth infra.AuthClientInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortAuth(c, "no_token", "Access Token Required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if parts[0] != "Bearer" {
			abortAuth(c, "wrong_method", "Not Bearer Auth Method")
			return
		}
		if len(parts) != 2 || parts[1] == "" {
			abortAuth(c, "no_token", "Access Token Required")
			return
		}
		token := parts[1]

		ident, err := auth.ResolveToken(c.Request.Context(), token)
		if err != nil {
			abortAuth(c, "invalid_token", "Invalid Token")
			return
		}

		c.Set(identityKey, *ident)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func abortAuth(c *gin.Context, code, description string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"error":             code,
		"error_description": description,
	})
}

// IdentityFrom returns the identity attached by AuthRequired.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	ident, ok := v.(domain.Identity)
	return ident, ok
}

// TokenFrom returns the raw bearer token attached by AuthRequired.
func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}
