package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zoomlabs/crm-server/internal/auth"
	"github.com/zoomlabs/crm-server/internal/types"
)

// AuthMiddleware gates every protected route. A missing token is a 403, an
// expired token a 401 with a message the client can distinguish from a
// malformed one. Claims are trusted as-is; handlers re-fetch whatever user
// state they need.
func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied. No token provided."})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		claims, err := auth.VerifyJWT(parts[1])

		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token expired"})
				return
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		ctx.Set(types.ContextUserKey, claims)
		ctx.Next()
	}
}
