package chathandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kangsive/ai-chat-bot/internal/config"
	"github.com/kangsive/ai-chat-bot/internal/domain/chat"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/metrics"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/middlewares"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/requests/chatreq"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/responses"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/responses/chatres"
)

// ChatHandler handles chat CRUD and message listing.
type ChatHandler struct {
	chats        *chat.Service
	defaultModel string
	logger       zerolog.Logger
}

func NewChatHandler(chats *chat.Service, cfg *config.Config, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chats:        chats,
		defaultModel: cfg.DefaultModel,
		logger:       logger,
	}
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	var req chatreq.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(c, http.StatusBadRequest, err, "invalid request body")
		return
	}

	model := req.Model
	if model == "" {
		model = h.defaultModel
	}

	created, err := h.chats.CreateChat(c.Request.Context(), u.ID, model, req.Title)
	if err != nil {
		responses.HandleError(c, err, "failed to create chat")
		return
	}

	metrics.ChatsCreatedTotal.Inc()
	c.JSON(http.StatusCreated, chatres.NewChatResponse(created))
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	var query chatreq.ListChatsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.HandleErrorWithStatus(c, http.StatusBadRequest, err, "invalid query parameters")
		return
	}

	chats, err := h.chats.ListChats(c.Request.Context(), u.ID, query.Archived)
	if err != nil {
		responses.HandleError(c, err, "failed to list chats")
		return
	}

	c.JSON(http.StatusOK, chatres.NewChatListResponse(chats))
}

func (h *ChatHandler) GetChat(c *gin.Context) {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	found, err := h.chats.GetOwnedChat(c.Request.Context(), u.ID, c.Param("chat_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get chat")
		return
	}

	c.JSON(http.StatusOK, chatres.NewChatResponse(found))
}

func (h *ChatHandler) UpdateChat(c *gin.Context) {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	var req chatreq.UpdateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(c, http.StatusBadRequest, err, "invalid request body")
		return
	}

	updated, err := h.chats.UpdateChat(c.Request.Context(), u.ID, c.Param("chat_id"), chat.ChatUpdate{
		Title:    req.Title,
		Model:    req.Model,
		Archived: req.Archived,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to update chat")
		return
	}

	c.JSON(http.StatusOK, chatres.NewChatResponse(updated))
}

func (h *ChatHandler) DeleteChat(c *gin.Context) {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	chatID := c.Param("chat_id")
	if err := h.chats.DeleteChat(c.Request.Context(), u.ID, chatID); err != nil {
		responses.HandleError(c, err, "failed to delete chat")
		return
	}

	c.JSON(http.StatusOK, chatres.DeletedResponse{ID: chatID, Object: "chat.deleted", Deleted: true})
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	ctx := c.Request.Context()
	owned, err := h.chats.GetOwnedChat(ctx, u.ID, c.Param("chat_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get chat")
		return
	}

	messages, err := h.chats.ListMessages(ctx, owned)
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}

	c.JSON(http.StatusOK, chatres.NewMessageListResponse(owned.PublicID, messages))
}
