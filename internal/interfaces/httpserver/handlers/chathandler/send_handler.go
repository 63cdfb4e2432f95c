package chathandler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kangsive/ai-chat-bot/internal/domain/chat"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/metrics"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/middlewares"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/requests/chatreq"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/responses"
	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

const (
	payloadFormField = "payload"
	filesFormField   = "files"
	dataPrefix       = "data: "
	doneMarker       = "[DONE]"
)

// SendHandler drives a full conversation turn over SSE.
type SendHandler struct {
	chats          *chat.Service
	uploadMaxBytes int64
}

func NewSendHandler(chats *chat.Service, uploadMaxBytes int64) *SendHandler {
	return &SendHandler{
		chats:          chats,
		uploadMaxBytes: uploadMaxBytes,
	}
}

// SendMessage accepts the user turn as JSON, or as multipart form data when
// files are attached, and streams the assistant reply as SSE data events
// terminated by a [DONE] marker.
func (h *SendHandler) SendMessage(c *gin.Context) {
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

	req, uploads, err := h.parseSendRequest(c)
	if err != nil {
		responses.HandleError(c, err, "invalid send request")
		return
	}

	content, err := h.contentFromRequest(c, req)
	if err != nil {
		responses.HandleError(c, err, "invalid message content")
		return
	}

	// File storage happens before the chat lock is taken inside SendMessage,
	// so slow uploads never serialize other turns on the same chat.
	stored, err := h.chats.StoreUploads(ctx, owned, uploads, h.uploadMaxBytes)
	if err != nil {
		responses.HandleError(c, err, "failed to store attachments")
		return
	}
	for _, up := range stored {
		metrics.AttachmentsStoredTotal.WithLabelValues(string(chat.CategoryForMIME(up.MIME))).Inc()
	}

	flusher, ok := middlewares.PrepareSSE(c)
	if !ok {
		responses.HandleErrorWithStatus(c, http.StatusInternalServerError, nil, "streaming unsupported")
		return
	}

	model := req.Model
	if model == "" {
		model = owned.Model
	}
	metrics.ActiveStreams.WithLabelValues(model).Inc()
	defer metrics.ActiveStreams.WithLabelValues(model).Dec()

	streamed := false
	emit := func(fragment string) error {
		if _, werr := c.Writer.WriteString(dataPrefix + fragment + "\n\n"); werr != nil {
			return werr
		}
		flusher.Flush()
		streamed = true
		return nil
	}

	start := time.Now()
	_, err = h.chats.SendMessage(ctx, owned, chat.SendParams{
		Content:      content,
		Uploads:      stored,
		EditSequence: req.EditSequence,
		Model:        req.Model,
	}, emit)
	if err != nil {
		metrics.RecordCompletion(model, "error", time.Since(start).Seconds())
		if !streamed {
			responses.HandleError(c, err, "failed to generate reply")
			return
		}
		h.writeSSEError(c, err)
		flusher.Flush()
		return
	}

	metrics.RecordCompletion(model, "success", time.Since(start).Seconds())
	_, _ = c.Writer.WriteString(dataPrefix + doneMarker + "\n\n")
	flusher.Flush()
}

func (h *SendHandler) parseSendRequest(c *gin.Context) (chatreq.SendMessageRequest, []chat.Upload, error) {
	var req chatreq.SendMessageRequest
	ctx := c.Request.Context()

	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, nil, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
				"invalid request body", err, "744ca5ff-4b0f-42c0-a4e8-6abe5482b9bc")
		}
		return req, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return req, nil, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"invalid multipart form", err, "05919457-5687-4076-b46b-7ea0d94b401e")
	}

	payload := c.PostForm(payloadFormField)
	if payload == "" {
		return req, nil, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"multipart requests require a payload field", nil, "b6163901-0806-4dae-a59d-d809a92ba628")
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return req, nil, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"invalid payload JSON", err, "112dc732-d75e-4164-9869-5d221f561e12")
	}

	// Each part is drained into memory here: multipart parts above gin's
	// in-memory limit live in temp files that vanish once the form is
	// released, so the readers must not outlive this function.
	uploads := make([]chat.Upload, 0, len(form.File[filesFormField]))
	for _, fileHeader := range form.File[filesFormField] {
		file, err := fileHeader.Open()
		if err != nil {
			return req, nil, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
				"unable to open uploaded file", err, "5c1d9bc7-151d-451e-8317-c5708e72ca8a")
		}
		data, err := io.ReadAll(io.LimitReader(file, h.uploadMaxBytes+1))
		file.Close()
		if err != nil {
			return req, nil, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
				"unable to read uploaded file", err, "7f275240-5939-4586-af61-6e668f9be458")
		}
		uploads = append(uploads, chat.Upload{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Reader:   bytes.NewReader(data),
		})
	}
	return req, uploads, nil
}

func (h *SendHandler) contentFromRequest(c *gin.Context, req chatreq.SendMessageRequest) (chat.Content, error) {
	ctx := c.Request.Context()
	if req.Content.IsText() {
		content := chat.NewUserTextContent(req.Content.Text)
		if err := content.Validate(ctx, chat.RoleUser); err != nil {
			return chat.Content{}, err
		}
		return content, nil
	}
	return chat.NewUserContent(ctx, req.Content.Items)
}

// writeSSEError reports a mid-stream failure without pretending the turn
// completed: the error travels as a data event and no [DONE] follows.
func (h *SendHandler) writeSSEError(c *gin.Context, err error) {
	event := map[string]any{"error": err.Error()}
	if perr, ok := err.(*platformerrors.PlatformError); ok {
		event = map[string]any{"error": perr.Message, "code": perr.GetUUID()}
	}
	encoded, _ := json.Marshal(event)
	_, _ = c.Writer.WriteString(dataPrefix + string(encoded) + "\n\n")
}
