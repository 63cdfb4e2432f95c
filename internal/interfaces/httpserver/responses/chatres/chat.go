// Package chatres contains the public read schemas for chats, messages and
// attachments.
package chatres

import (
	"time"

	"github.com/kangsive/ai-chat-bot/internal/domain/chat"
)

type ChatResponse struct {
	ID        string    `json:"id"`
	Title     *string   `json:"title"`
	Model     string    `json:"model"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatListResponse struct {
	Object string          `json:"object"`
	Data   []*ChatResponse `json:"data"`
}

// MessageResponse is the read schema for a stored message. Content is either
// a plain string or a list of content items, depending on what was stored.
type MessageResponse struct {
	ID              string                `json:"id"`
	ChatID          string                `json:"chat_id"`
	Role            string                `json:"role"`
	Sequence        int                   `json:"sequence"`
	Content         any                   `json:"content"`
	Tokens          *int                  `json:"tokens,omitempty"`
	MessageMetadata map[string]any        `json:"message_metadata,omitempty"`
	Attachments     []*AttachmentResponse `json:"attachments"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type MessageListResponse struct {
	Object string             `json:"object"`
	Data   []*MessageResponse `json:"data"`
}

type AttachmentResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
}

type DeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

func NewChatResponse(c *chat.Chat) *ChatResponse {
	return &ChatResponse{
		ID:        c.PublicID,
		Title:     c.Title,
		Model:     c.Model,
		Archived:  c.Archived,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewChatListResponse(chats []*chat.Chat) *ChatListResponse {
	data := make([]*ChatResponse, 0, len(chats))
	for _, c := range chats {
		data = append(data, NewChatResponse(c))
	}
	return &ChatListResponse{Object: "list", Data: data}
}

func NewMessageResponse(chatPublicID string, m *chat.Message) *MessageResponse {
	attachments := make([]*AttachmentResponse, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, NewAttachmentResponse(a))
	}
	return &MessageResponse{
		ID:              m.PublicID,
		ChatID:          chatPublicID,
		Role:            string(m.Role),
		Sequence:        m.Sequence,
		Content:         m.Content.FlattenForDisplay(m.Role),
		Tokens:          m.Tokens,
		MessageMetadata: m.Metadata,
		Attachments:     attachments,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func NewMessageListResponse(chatPublicID string, messages []*chat.Message) *MessageListResponse {
	data := make([]*MessageResponse, 0, len(messages))
	for _, m := range messages {
		data = append(data, NewMessageResponse(chatPublicID, m))
	}
	return &MessageListResponse{Object: "list", Data: data}
}

func NewAttachmentResponse(a *chat.Attachment) *AttachmentResponse {
	return &AttachmentResponse{
		ID:       a.PublicID,
		Filename: a.Filename,
		FileType: a.FileType,
		FileSize: a.FileSize,
	}
}
