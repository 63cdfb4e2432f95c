package attachmentroute

import (
	"github.com/gin-gonic/gin"

	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/handlers/attachmenthandler"
)

type AttachmentRoute struct {
	handler *attachmenthandler.AttachmentHandler
}

func NewAttachmentRoute(handler *attachmenthandler.AttachmentHandler) *AttachmentRoute {
	return &AttachmentRoute{handler: handler}
}

func (route *AttachmentRoute) RegisterRouter(router gin.IRouter) {
	attachments := router.Group("/attachments")
	attachments.GET("/:attachment_id", route.handler.Download)
	attachments.DELETE("/:attachment_id", route.handler.Delete)
}
