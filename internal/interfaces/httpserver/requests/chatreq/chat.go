package chatreq

import (
	"github.com/kangsive/ai-chat-bot/internal/domain/chat"
)

type CreateChatRequest struct {
	Title *string `json:"title,omitempty"`
	Model string  `json:"model,omitempty"`
}

type UpdateChatRequest struct {
	Title    *string `json:"title,omitempty"`
	Model    *string `json:"model,omitempty"`
	Archived *bool   `json:"archived,omitempty"`
}

// SendMessageRequest is the JSON payload of the send endpoint. With a
// multipart request the same document travels in the "payload" form field
// and files ride alongside it in the "files" field.
type SendMessageRequest struct {
	Content      chat.WireContent `json:"content"`
	EditSequence *int             `json:"edit_sequence,omitempty"`
	Model        string           `json:"model,omitempty"`
}

type ListChatsQuery struct {
	Archived *bool `form:"archived"`
}
