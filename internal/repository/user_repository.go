package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"eventdash/internal/model"
)

// UserRepository handles identity rows.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertFromExternal finds or creates a user keyed by the identity
// provider's id. New users get a freshly minted API key.
func (r *UserRepository) UpsertFromExternal(ctx context.Context, externalID string) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("external_id = ?", externalID).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{
			ExternalID: externalID,
			APIKey:     uuid.NewString(),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) FindByAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
