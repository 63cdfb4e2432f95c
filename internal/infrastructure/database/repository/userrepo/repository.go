package userrepo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kangsive/ai-chat-bot/internal/domain/user"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database/dbschema"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database/transaction"
	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

// Repository implements user.UserRepository on gorm.
type Repository struct {
	db *transaction.Database
}

var _ user.UserRepository = (*Repository)(nil)

func NewRepository(db *transaction.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, u *user.User) error {
	schema := dbschema.NewSchemaUser(u)
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(schema).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"unable to create user", err, "449e5923-5218-425f-9c6f-7aa3cd0fc786")
	}
	u.ID = schema.ID
	u.CreatedAt = schema.CreatedAt
	u.UpdatedAt = schema.UpdatedAt
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var schema dbschema.User
	if err := r.db.GetTx(ctx).WithContext(ctx).First(&schema, id).Error; err != nil {
		return nil, r.mapFindError(ctx, err, fmt.Sprintf("user %d", id))
	}
	return schema.EtoD(), nil
}

func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*user.User, error) {
	var schema dbschema.User
	if err := r.db.GetTx(ctx).WithContext(ctx).Where("public_id = ?", publicID).First(&schema).Error; err != nil {
		return nil, r.mapFindError(ctx, err, fmt.Sprintf("user %s", publicID))
	}
	return schema.EtoD(), nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var schema dbschema.User
	if err := r.db.GetTx(ctx).WithContext(ctx).Where("email = ?", email).First(&schema).Error; err != nil {
		return nil, r.mapFindError(ctx, err, fmt.Sprintf("user with email %s", email))
	}
	return schema.EtoD(), nil
}

func (r *Repository) Update(ctx context.Context, u *user.User) error {
	schema := dbschema.NewSchemaUser(u)
	if err := r.db.GetTx(ctx).WithContext(ctx).Model(&dbschema.User{}).
		Where("id = ?", u.ID).
		Select("Email", "PasswordHash", "IsActive").
		Updates(schema).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			fmt.Sprintf("unable to update user %s", u.PublicID), err, "c51d3e9a-e5dd-4ffc-8666-27b7e014c19e")
	}
	return nil
}

func (r *Repository) mapFindError(ctx context.Context, err error, subject string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("%s not found", subject), err, "926a7c4b-67dd-4d6f-9827-83742101b843")
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
		fmt.Sprintf("unable to load %s", subject), err, "624ed8d1-18aa-4cee-89ed-cbc6fe93df36")
}
