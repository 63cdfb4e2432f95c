package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/routes/v1/attachmentroute"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/routes/v1/chatroute"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/routes/v1/userroute"
)

type V1Route struct {
	user       *userroute.UserRoute
	chat       *chatroute.ChatRoute
	attachment *attachmentroute.AttachmentRoute
}

func NewV1Route(
	user *userroute.UserRoute,
	chat *chatroute.ChatRoute,
	attachment *attachmentroute.AttachmentRoute,
) *V1Route {
	return &V1Route{
		user:       user,
		chat:       chat,
		attachment: attachment,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Route.user.RegisterRouter(v1Router)
	v1Route.chat.RegisterRouter(v1Router)
	v1Route.attachment.RegisterRouter(v1Router)
}
