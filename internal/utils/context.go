package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/znyiri100/snake-rivals-arena/internal/middleware"
	"github.com/znyiri100/snake-rivals-arena/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

// GetCurrentUserID returns 0 when the request carries no identity.
func GetCurrentUserID(ctx *gin.Context) uint {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0
	}

	return user.ID
}
