// Package chat holds the conversation domain: chats, ordered messages with
// polymorphic content, attachments, and the services that mutate them.
package chat

import (
	"context"
	"time"

	"github.com/kangsive/ai-chat-bot/internal/utils/idgen"
)

// Chat is one conversation owned by a user. It exclusively owns its
// messages; deleting the chat deletes them.
type Chat struct {
	ID        uint
	PublicID  string
	UserID    uint
	Title     *string
	Model     string
	Archived  bool
	Messages  []*Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewChat creates a chat for a user. Title stays nil until the first user
// message derives one, unless the caller names the chat up front.
func NewChat(userID uint, model string, title *string) (*Chat, error) {
	publicID, err := idgen.GenerateSecureID("chat", 16)
	if err != nil {
		return nil, err
	}
	return &Chat{
		PublicID: publicID,
		UserID:   userID,
		Model:    model,
		Title:    title,
	}, nil
}

// ChatFilter narrows chat lookups.
type ChatFilter struct {
	UserID   *uint
	Archived *bool
}

// ChatRepository is the persistence boundary for chats.
type ChatRepository interface {
	Create(ctx context.Context, chat *Chat) error
	FindByID(ctx context.Context, id uint) (*Chat, error)
	FindByPublicID(ctx context.Context, publicID string) (*Chat, error)
	List(ctx context.Context, filter ChatFilter) ([]*Chat, error)
	Update(ctx context.Context, chat *Chat) error
	// Delete removes the chat together with its messages and their
	// attachment rows.
	Delete(ctx context.Context, chat *Chat) error
}
