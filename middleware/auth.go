package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vibelab/vibe/store"
	"github.com/vibelab/vibe/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID
	// in the gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the authenticated username (the token
	// subject) inside the gin context.
	ContextUsernameKey = "username"
)

// AuthRequired ensures the request carries a valid bearer JWT and that the
// token's subject still resolves to a user. A vanished user gets the same
// 401 as a bad token.
func AuthRequired(s *store.Store) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, "invalid authorization header format")
			ctx.Abort()
			return
		}

		subject, err := utils.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, "could not validate credentials")
			ctx.Abort()
			return
		}

		user, err := s.FindUserByUsername(subject)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, "could not validate credentials")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, user.ID)
		ctx.Set(ContextUsernameKey, user.Username)
		ctx.Next()
	}
}

// UserID returns the authenticated user's id from the gin context.
func UserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
