// Package chatrepo implements the chat domain's persistence boundaries on
// gorm. All lookups honor the transaction bound to ctx.
package chatrepo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kangsive/ai-chat-bot/internal/domain/chat"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database/dbschema"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database/transaction"
	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

// ChatRepository implements chat.ChatRepository.
type ChatRepository struct {
	db *transaction.Database
}

var _ chat.ChatRepository = (*ChatRepository)(nil)

func NewChatRepository(db *transaction.Database) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, c *chat.Chat) error {
	schema := dbschema.NewSchemaChat(c)
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(schema).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"unable to create chat", err, "da344c30-2341-48c8-a24d-0e623410521b")
	}
	c.ID = schema.ID
	c.CreatedAt = schema.CreatedAt
	c.UpdatedAt = schema.UpdatedAt
	return nil
}

func (r *ChatRepository) FindByID(ctx context.Context, id uint) (*chat.Chat, error) {
	var schema dbschema.Chat
	if err := r.db.GetTx(ctx).WithContext(ctx).First(&schema, id).Error; err != nil {
		return nil, mapFindError(ctx, err, fmt.Sprintf("chat %d", id))
	}
	return schema.EtoD(), nil
}

func (r *ChatRepository) FindByPublicID(ctx context.Context, publicID string) (*chat.Chat, error) {
	var schema dbschema.Chat
	if err := r.db.GetTx(ctx).WithContext(ctx).Where("public_id = ?", publicID).First(&schema).Error; err != nil {
		return nil, mapFindError(ctx, err, fmt.Sprintf("chat %s", publicID))
	}
	return schema.EtoD(), nil
}

func (r *ChatRepository) List(ctx context.Context, filter chat.ChatFilter) ([]*chat.Chat, error) {
	query := r.db.GetTx(ctx).WithContext(ctx).Model(&dbschema.Chat{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Archived != nil {
		query = query.Where("archived = ?", *filter.Archived)
	}

	var schemas []dbschema.Chat
	if err := query.Order("updated_at DESC").Find(&schemas).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"unable to list chats", err, "441e2b1e-21f6-4bfb-80a2-0de801213230")
	}

	chats := make([]*chat.Chat, 0, len(schemas))
	for i := range schemas {
		chats = append(chats, schemas[i].EtoD())
	}
	return chats, nil
}

func (r *ChatRepository) Update(ctx context.Context, c *chat.Chat) error {
	schema := dbschema.NewSchemaChat(c)
	if err := r.db.GetTx(ctx).WithContext(ctx).Model(&dbschema.Chat{}).
		Where("id = ?", c.ID).
		Select("Title", "Model", "Archived").
		Updates(schema).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			fmt.Sprintf("unable to update chat %s", c.PublicID), err, "f7ad9821-e8a4-4603-8bf7-ce57c63e4a18")
	}
	return nil
}

// Delete removes the chat row and, through the child constraints, its
// messages and attachments.
func (r *ChatRepository) Delete(ctx context.Context, c *chat.Chat) error {
	tx := r.db.GetTx(ctx).WithContext(ctx)

	err := tx.Where("message_id IN (?)",
		tx.Session(&gorm.Session{NewDB: true}).Model(&dbschema.Message{}).Select("id").Where("chat_id = ?", c.ID),
	).Delete(&dbschema.Attachment{}).Error
	if err == nil {
		err = tx.Where("chat_id = ?", c.ID).Delete(&dbschema.Message{}).Error
	}
	if err == nil {
		err = tx.Delete(&dbschema.Chat{}, c.ID).Error
	}
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			fmt.Sprintf("unable to delete chat %s", c.PublicID), err, "6568e1da-3528-4569-9eb1-a74d1f443a06")
	}
	return nil
}

func mapFindError(ctx context.Context, err error, subject string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("%s not found", subject), err, "2fd057b5-694f-45ad-9953-ff815f488947")
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
		fmt.Sprintf("unable to load %s", subject), err, "009b5aba-65c6-4cd3-b9db-ee832191a941")
}
