package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kangsive/ai-chat-bot/internal/domain/user"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/auth"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/responses"
)

const currentUserContextKey = "currentUser"

// AuthMiddleware validates the bearer token and loads the account it was
// issued for. Requests without a valid token never reach the handlers.
func AuthMiddleware(tokens *auth.JWTManager, users user.UserRepository, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			logger.Warn().
				Str("path", c.FullPath()).
				Str("method", c.Request.Method).
				Msg("unauthenticated request")
			responses.HandleErrorWithStatus(c, http.StatusUnauthorized, nil, "authentication required")
			return
		}

		ctx := c.Request.Context()
		publicID, err := tokens.Verify(ctx, tokenString)
		if err != nil {
			logger.Warn().Err(err).Msg("token validation failed")
			responses.HandleErrorWithStatus(c, http.StatusUnauthorized, err, "unauthorized")
			return
		}

		u, err := users.FindByPublicID(ctx, publicID)
		if err != nil || !u.IsActive {
			logger.Warn().Str("user_id", publicID).Msg("token subject not usable")
			responses.HandleErrorWithStatus(c, http.StatusUnauthorized, nil, "unauthorized")
			return
		}

		c.Set(currentUserContextKey, u)
		c.Next()
	}
}

// CurrentUser returns the authenticated account, if any.
func CurrentUser(c *gin.Context) (*user.User, bool) {
	val, ok := c.Get(currentUserContextKey)
	if !ok {
		return nil, false
	}
	u, ok := val.(*user.User)
	return u, ok
}
