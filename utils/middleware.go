package utils

import (
	"context"
	"time"

	"github.com/kataras/iris/v12"
)

// UserIDFromTokenMiddleware extracts user ID from JWT token and stores it in context
func UserIDFromTokenMiddleware(ctx iris.Context) {
	claims := GetAccessToken(ctx)
	if claims == nil {
		ctx.StopWithStatus(iris.StatusUnauthorized)
		return
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// AdminOnlyMiddleware checks the role claim; there is no email allow-list.
func AdminOnlyMiddleware(ctx iris.Context) {
	claims := GetAccessToken(ctx)
	if !claims.IsAdmin() {
		JSONError(ctx, iris.StatusForbidden, "forbidden", "admin access required")
		return
	}
	// Ensure userID is available to downstream handlers
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// TimeoutMiddleware bounds every downstream store call by d.
func TimeoutMiddleware(d time.Duration) iris.Handler {
	return func(ctx iris.Context) {
		c, cancel := context.WithTimeout(ctx.Request().Context(), d)
		defer cancel()
		ctx.ResetRequest(ctx.Request().WithContext(c))
		ctx.Next()
	}
}
