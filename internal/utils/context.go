package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/zoomlabs/crm-server/internal/auth"
	"github.com/zoomlabs/crm-server/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (auth.SessionClaims, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return auth.SessionClaims{}, fmt.Errorf("User not authenticated")
	}

	claims, ok := user.(auth.SessionClaims)

	if !ok {
		return auth.SessionClaims{}, fmt.Errorf("Invalid user type in context")
	}

	return claims, nil
}

// IsAdmin reports whether the caller carries the admin role.
func IsAdmin(claims auth.SessionClaims) bool {
	return claims.Role == "admin"
}
