package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/handlers/authhandler"
)

// AuthRoute handles authentication routes
type AuthRoute struct {
	authHandler *authhandler.AuthHandler
}

func NewAuthRoute(authHandler *authhandler.AuthHandler) *AuthRoute {
	return &AuthRoute{authHandler: authHandler}
}

// RegisterRouter registers the public auth routes
func (a *AuthRoute) RegisterRouter(router gin.IRouter) {
	router.POST("/auth/register", a.authHandler.Register)
	router.POST("/auth/login", a.authHandler.Login)
}
