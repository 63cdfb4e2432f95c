package chat

import (
	"context"
	"time"

	"github.com/kangsive/ai-chat-bot/internal/utils/idgen"
)

// Message is one entry in a chat's ordered history. Sequence is a 1-based
// per-chat ordering integer, assigned by the message store and kept
// contiguous across edit-truncation. A message exclusively owns its
// attachments.
type Message struct {
	ID          uint
	PublicID    string
	ChatID      uint
	Role        Role
	Sequence    int
	Content     Content
	Tokens      *int
	Metadata    map[string]any
	Attachments []*Attachment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewMessage creates an unsequenced message; the message store assigns the
// sequence when it appends.
func NewMessage(chatID uint, role Role, content Content) (*Message, error) {
	publicID, err := idgen.GenerateSecureID("msg", 16)
	if err != nil {
		return nil, err
	}
	return &Message{
		PublicID: publicID,
		ChatID:   chatID,
		Role:     role,
		Content:  content,
	}, nil
}

// MessageRepository is the persistence boundary for messages. ListByChat
// returns messages ordered by sequence ascending with attachments loaded.
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	FindByID(ctx context.Context, id uint) (*Message, error)
	FindByPublicID(ctx context.Context, publicID string) (*Message, error)
	FindByChatAndSequence(ctx context.Context, chatID uint, sequence int) (*Message, error)
	ListByChat(ctx context.Context, chatID uint) ([]*Message, error)
	MaxSequence(ctx context.Context, chatID uint) (int, error)
	UpdateContent(ctx context.Context, messageID uint, content Content) error
	// DeleteAfterSequence removes every message of the chat with a sequence
	// strictly greater than the given one, attachments included.
	DeleteAfterSequence(ctx context.Context, chatID uint, sequence int) error
}
