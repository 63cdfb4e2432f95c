package dbschema

import (
	"github.com/kangsive/ai-chat-bot/internal/domain/chat"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Chat{}, Message{}, Attachment{})
}

// Chat represents the persisted chat schema.
type Chat struct {
	BaseModel
	PublicID string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID   uint    `gorm:"index;not null"`
	User     User    `gorm:"foreignKey:UserID"`
	Title    *string `gorm:"type:varchar(255)"`
	Model    string  `gorm:"type:varchar(100);not null"`
	Archived bool    `gorm:"not null;default:false"`

	Messages []Message `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
}

// Message represents the persisted message schema. Content is the full
// tagged-union envelope stored as one jsonb column; the unique index on
// (chat_id, sequence) backs the no-collision invariant.
type Message struct {
	BaseModel
	PublicID string      `gorm:"type:varchar(50);uniqueIndex;not null"`
	ChatID   uint        `gorm:"uniqueIndex:ux_message_chat_sequence;not null"`
	Chat     Chat        `gorm:"foreignKey:ChatID"`
	Role     string      `gorm:"type:varchar(20);not null"`
	Sequence int         `gorm:"uniqueIndex:ux_message_chat_sequence;not null"`
	Content  JSONContent `gorm:"type:jsonb;not null"`
	Tokens   *int
	Metadata JSONMap `gorm:"type:jsonb"`

	Attachments []Attachment `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

// Attachment represents the persisted attachment schema. StoragePath is the
// opaque locator handed back to the file storage backend.
type Attachment struct {
	BaseModel
	PublicID    string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	MessageID   uint    `gorm:"index;not null"`
	Message     Message `gorm:"foreignKey:MessageID"`
	Filename    string  `gorm:"type:varchar(255);not null"`
	StoragePath string  `gorm:"type:varchar(512);not null"`
	FileType    string  `gorm:"type:varchar(100);not null"`
	FileSize    int64   `gorm:"not null;default:0"`
	Metadata    JSONMap `gorm:"type:jsonb"`
}

// NewSchemaChat converts a domain chat into a schema instance.
func NewSchemaChat(c *chat.Chat) *Chat {
	if c == nil {
		return nil
	}

	return &Chat{
		BaseModel: BaseModel{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		PublicID: c.PublicID,
		UserID:   c.UserID,
		Title:    c.Title,
		Model:    c.Model,
		Archived: c.Archived,
	}
}

// EtoD converts a schema chat back to the domain representation. Messages
// are converted only when loaded.
func (c *Chat) EtoD() *chat.Chat {
	if c == nil {
		return nil
	}

	domainChat := &chat.Chat{
		ID:        c.ID,
		PublicID:  c.PublicID,
		UserID:    c.UserID,
		Title:     c.Title,
		Model:     c.Model,
		Archived:  c.Archived,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for i := range c.Messages {
		domainChat.Messages = append(domainChat.Messages, c.Messages[i].EtoD())
	}
	return domainChat
}

// NewSchemaMessage converts a domain message into a schema instance.
func NewSchemaMessage(m *chat.Message) *Message {
	if m == nil {
		return nil
	}

	return &Message{
		BaseModel: BaseModel{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		PublicID: m.PublicID,
		ChatID:   m.ChatID,
		Role:     string(m.Role),
		Sequence: m.Sequence,
		Content:  JSONContent(m.Content),
		Tokens:   m.Tokens,
		Metadata: JSONMap(m.Metadata),
	}
}

// EtoD converts a schema message back to the domain representation.
func (m *Message) EtoD() *chat.Message {
	if m == nil {
		return nil
	}

	domainMsg := &chat.Message{
		ID:        m.ID,
		PublicID:  m.PublicID,
		ChatID:    m.ChatID,
		Role:      chat.Role(m.Role),
		Sequence:  m.Sequence,
		Content:   chat.Content(m.Content),
		Tokens:    m.Tokens,
		Metadata:  map[string]any(m.Metadata),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for i := range m.Attachments {
		domainMsg.Attachments = append(domainMsg.Attachments, m.Attachments[i].EtoD())
	}
	return domainMsg
}

// NewSchemaAttachment converts a domain attachment into a schema instance.
func NewSchemaAttachment(a *chat.Attachment) *Attachment {
	if a == nil {
		return nil
	}

	return &Attachment{
		BaseModel: BaseModel{
			ID:        a.ID,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		},
		PublicID:    a.PublicID,
		MessageID:   a.MessageID,
		Filename:    a.Filename,
		StoragePath: a.StoragePath,
		FileType:    a.FileType,
		FileSize:    a.FileSize,
		Metadata:    JSONMap(a.Metadata),
	}
}

// EtoD converts a schema attachment back to the domain representation.
func (a *Attachment) EtoD() *chat.Attachment {
	if a == nil {
		return nil
	}

	return &chat.Attachment{
		ID:          a.ID,
		PublicID:    a.PublicID,
		MessageID:   a.MessageID,
		Filename:    a.Filename,
		StoragePath: a.StoragePath,
		FileType:    a.FileType,
		FileSize:    a.FileSize,
		Metadata:    map[string]any(a.Metadata),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
