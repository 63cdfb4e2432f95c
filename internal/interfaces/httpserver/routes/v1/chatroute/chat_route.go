package chatroute

import (
	"github.com/gin-gonic/gin"

	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/handlers/chathandler"
)

// ChatRoute wires the chat CRUD and message endpoints.
type ChatRoute struct {
	chatHandler *chathandler.ChatHandler
	sendHandler *chathandler.SendHandler
}

func NewChatRoute(chatHandler *chathandler.ChatHandler, sendHandler *chathandler.SendHandler) *ChatRoute {
	return &ChatRoute{
		chatHandler: chatHandler,
		sendHandler: sendHandler,
	}
}

func (route *ChatRoute) RegisterRouter(router gin.IRouter) {
	chats := router.Group("/chats")
	chats.POST("", route.chatHandler.CreateChat)
	chats.GET("", route.chatHandler.ListChats)
	chats.GET("/:chat_id", route.chatHandler.GetChat)
	chats.PATCH("/:chat_id", route.chatHandler.UpdateChat)
	chats.DELETE("/:chat_id", route.chatHandler.DeleteChat)
	chats.GET("/:chat_id/messages", route.chatHandler.ListMessages)
	chats.POST("/:chat_id/messages", route.sendHandler.SendMessage)
}
