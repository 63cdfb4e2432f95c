package chatrepo

import (
	"context"
	"fmt"

	"github.com/kangsive/ai-chat-bot/internal/domain/chat"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database/dbschema"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database/transaction"
	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

// MessageRepository implements chat.MessageRepository.
type MessageRepository struct {
	db *transaction.Database
}

var _ chat.MessageRepository = (*MessageRepository)(nil)

func NewMessageRepository(db *transaction.Database) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *chat.Message) error {
	schema := dbschema.NewSchemaMessage(m)
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(schema).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"unable to create message", err, "ad7a40ed-5a36-4d3b-b5c9-d8814c0d3455")
	}
	m.ID = schema.ID
	m.CreatedAt = schema.CreatedAt
	m.UpdatedAt = schema.UpdatedAt
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id uint) (*chat.Message, error) {
	var schema dbschema.Message
	if err := r.db.GetTx(ctx).WithContext(ctx).Preload("Attachments").First(&schema, id).Error; err != nil {
		return nil, mapFindError(ctx, err, fmt.Sprintf("message %d", id))
	}
	return schema.EtoD(), nil
}

func (r *MessageRepository) FindByPublicID(ctx context.Context, publicID string) (*chat.Message, error) {
	var schema dbschema.Message
	if err := r.db.GetTx(ctx).WithContext(ctx).Preload("Attachments").
		Where("public_id = ?", publicID).First(&schema).Error; err != nil {
		return nil, mapFindError(ctx, err, fmt.Sprintf("message %s", publicID))
	}
	return schema.EtoD(), nil
}

func (r *MessageRepository) FindByChatAndSequence(ctx context.Context, chatID uint, sequence int) (*chat.Message, error) {
	var schema dbschema.Message
	if err := r.db.GetTx(ctx).WithContext(ctx).Preload("Attachments").
		Where("chat_id = ? AND sequence = ?", chatID, sequence).First(&schema).Error; err != nil {
		return nil, mapFindError(ctx, err, fmt.Sprintf("message at sequence %d", sequence))
	}
	return schema.EtoD(), nil
}

func (r *MessageRepository) ListByChat(ctx context.Context, chatID uint) ([]*chat.Message, error) {
	var schemas []dbschema.Message
	if err := r.db.GetTx(ctx).WithContext(ctx).Preload("Attachments").
		Where("chat_id = ?", chatID).Order("sequence ASC").Find(&schemas).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"unable to list messages", err, "c82dbb9b-b5e6-4797-b910-b7ebc574c359")
	}

	messages := make([]*chat.Message, 0, len(schemas))
	for i := range schemas {
		messages = append(messages, schemas[i].EtoD())
	}
	return messages, nil
}

func (r *MessageRepository) MaxSequence(ctx context.Context, chatID uint) (int, error) {
	var maxSequence int
	err := r.db.GetTx(ctx).WithContext(ctx).Model(&dbschema.Message{}).
		Where("chat_id = ?", chatID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&maxSequence).Error
	if err != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"unable to read max sequence", err, "135f4964-a144-4fcc-ac61-6eb289793b75")
	}
	return maxSequence, nil
}

func (r *MessageRepository) UpdateContent(ctx context.Context, messageID uint, content chat.Content) error {
	err := r.db.GetTx(ctx).WithContext(ctx).Model(&dbschema.Message{}).
		Where("id = ?", messageID).
		Update("content", dbschema.JSONContent(content)).Error
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			fmt.Sprintf("unable to update content of message %d", messageID), err, "a1034289-8121-4b1a-8771-87fcdcef45d4")
	}
	return nil
}

// DeleteAfterSequence removes the chat's trailing messages past the given
// sequence, their attachments first.
func (r *MessageRepository) DeleteAfterSequence(ctx context.Context, chatID uint, sequence int) error {
	tx := r.db.GetTx(ctx).WithContext(ctx)

	var ids []uint
	if err := tx.Model(&dbschema.Message{}).
		Where("chat_id = ? AND sequence > ?", chatID, sequence).
		Pluck("id", &ids).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"unable to collect trailing messages", err, "325a4aac-485b-46bd-bdf9-c7b88e08f8c3")
	}
	if len(ids) == 0 {
		return nil
	}

	if err := tx.Where("message_id IN ?", ids).Delete(&dbschema.Attachment{}).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"unable to delete trailing attachments", err, "1de94cc6-b96f-4271-ac0d-ef13040e8496")
	}
	if err := tx.Where("id IN ?", ids).Delete(&dbschema.Message{}).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"unable to delete trailing messages", err, "fc694002-3eb5-40a6-adde-ced1b177ec31")
	}
	return nil
}
