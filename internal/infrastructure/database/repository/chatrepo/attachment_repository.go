package chatrepo

import (
	"context"
	"fmt"

	"github.com/kangsive/ai-chat-bot/internal/domain/chat"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database/dbschema"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database/transaction"
	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

// AttachmentRepository implements chat.AttachmentRepository.
type AttachmentRepository struct {
	db *transaction.Database
}

var _ chat.AttachmentRepository = (*AttachmentRepository)(nil)

func NewAttachmentRepository(db *transaction.Database) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, a *chat.Attachment) error {
	schema := dbschema.NewSchemaAttachment(a)
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(schema).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"unable to create attachment", err, "562ff46e-4949-4d31-9d48-fdcad78587e9")
	}
	a.ID = schema.ID
	a.CreatedAt = schema.CreatedAt
	a.UpdatedAt = schema.UpdatedAt
	return nil
}

func (r *AttachmentRepository) FindByPublicID(ctx context.Context, publicID string) (*chat.Attachment, error) {
	var schema dbschema.Attachment
	if err := r.db.GetTx(ctx).WithContext(ctx).Where("public_id = ?", publicID).First(&schema).Error; err != nil {
		return nil, mapFindError(ctx, err, fmt.Sprintf("attachment %s", publicID))
	}
	return schema.EtoD(), nil
}

func (r *AttachmentRepository) ListByMessage(ctx context.Context, messageID uint) ([]*chat.Attachment, error) {
	var schemas []dbschema.Attachment
	if err := r.db.GetTx(ctx).WithContext(ctx).
		Where("message_id = ?", messageID).Order("id ASC").Find(&schemas).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"unable to list attachments", err, "9b907e02-fdf5-42c5-830d-9054e1630bed")
	}

	attachments := make([]*chat.Attachment, 0, len(schemas))
	for i := range schemas {
		attachments = append(attachments, schemas[i].EtoD())
	}
	return attachments, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, a *chat.Attachment) error {
	if err := r.db.GetTx(ctx).WithContext(ctx).Delete(&dbschema.Attachment{}, a.ID).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			fmt.Sprintf("unable to delete attachment %s", a.PublicID), err, "ec27d8b9-475a-4ac6-8537-3ab39ca5b554")
	}
	return nil
}
