package attachmenthandler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kangsive/ai-chat-bot/internal/domain/chat"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/middlewares"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/responses"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/responses/chatres"
)

// AttachmentHandler serves stored attachment files.
type AttachmentHandler struct {
	chats *chat.Service
}

func NewAttachmentHandler(chats *chat.Service) *AttachmentHandler {
	return &AttachmentHandler{chats: chats}
}

// Download streams the raw file back with its stored content type.
func (h *AttachmentHandler) Download(c *gin.Context) {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	att, data, err := h.chats.ReadAttachment(c.Request.Context(), u.ID, c.Param("attachment_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to read attachment")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))
	c.Data(http.StatusOK, att.FileType, data)
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	attachmentID := c.Param("attachment_id")
	if err := h.chats.DeleteAttachment(c.Request.Context(), u.ID, attachmentID); err != nil {
		responses.HandleError(c, err, "failed to delete attachment")
		return
	}

	c.JSON(http.StatusOK, chatres.DeletedResponse{ID: attachmentID, Object: "attachment.deleted", Deleted: true})
}
