package userroute

import (
	"github.com/gin-gonic/gin"

	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/handlers/userhandler"
)

// UserRoute wires the profile endpoints.
type UserRoute struct {
	userHandler *userhandler.UserHandler
}

func NewUserRoute(userHandler *userhandler.UserHandler) *UserRoute {
	return &UserRoute{userHandler: userHandler}
}

func (route *UserRoute) RegisterRouter(router gin.IRouter) {
	router.GET("/me", route.userHandler.GetMe)
	router.PUT("/me", route.userHandler.UpdateMe)
}
