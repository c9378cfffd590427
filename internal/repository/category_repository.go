package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"eventdash/internal/model"
)

// CategoryRepository manages event categories. Every lookup is scoped by
// the owning user's id, so ownership is enforced by the composite key
// rather than a separate authorization check.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListByUser returns the user's categories ordered by most recent
// activity first. This ordering is what the dashboard listing preserves.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID uint) ([]model.EventCategory, error) {
	var categories []model.EventCategory
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// FindByName looks a category up by its (name, userId) composite key.
// Returns gorm.ErrRecordNotFound when the user owns no such category.
func (r *CategoryRepository) FindByName(ctx context.Context, userID uint, name string) (*model.EventCategory, error) {
	var category model.EventCategory
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.EventCategory) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// CreateBatch inserts several categories at once (quickstart flow).
func (r *CategoryRepository) CreateBatch(ctx context.Context, categories []model.EventCategory) error {
	if len(categories) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&categories).Error; err != nil {
		return fmt.Errorf("create categories: %w", err)
	}
	return nil
}

// DeleteByName removes a category and, through the FK constraint, its
// events. Returns gorm.ErrRecordNotFound when nothing matched.
func (r *CategoryRepository) DeleteByName(ctx context.Context, userID uint, name string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		Delete(&model.EventCategory{})
	if res.Error != nil {
		return fmt.Errorf("delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Touch advances the category's updated_at to now. Called by event
// ingestion so the dashboard ordering tracks recent activity.
func (r *CategoryRepository) Touch(ctx context.Context, categoryID uint, now time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&model.EventCategory{}).
		Where("id = ?", categoryID).
		Update("updated_at", now).Error; err != nil {
		return fmt.Errorf("touch category: %w", err)
	}
	return nil
}
