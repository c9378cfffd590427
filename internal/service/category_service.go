package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"eventdash/internal/apperr"
	"eventdash/internal/model"
	"eventdash/internal/repository"
)

// CategoryInput is the data required to create a category.
type CategoryInput struct {
	Name  string
	Color string // #RRGGBB
	Emoji string
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CategoryService wraps category CRUD business logic.
type CategoryService struct {
	categoryRepo *repository.CategoryRepository
}

func NewCategoryService(categoryRepo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) Create(ctx context.Context, user *model.User, input CategoryInput) (*model.EventCategory, error) {
	if err := ValidateCategoryName(input.Name); err != nil {
		return nil, err
	}
	color, err := parseColor(input.Color)
	if err != nil {
		return nil, err
	}
	if err := ValidateEmoji(input.Emoji); err != nil {
		return nil, err
	}

	category := model.EventCategory{
		UserID: user.ID,
		Name:   strings.ToLower(input.Name),
		Color:  color,
		Emoji:  input.Emoji,
	}
	if err := s.categoryRepo.Create(ctx, &category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict(fmt.Sprintf("Category %q already exists", category.Name))
		}
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Delete(ctx context.Context, user *model.User, name string) error {
	if err := ValidateCategoryName(name); err != nil {
		return err
	}
	name = strings.ToLower(name)
	err := s.categoryRepo.DeleteByName(ctx, user.ID, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(fmt.Sprintf("Category %q not found", name))
	}
	return err
}

// quickstartCategories mirror what a fresh dashboard offers to insert.
var quickstartCategories = []model.EventCategory{
	{Name: "bug", Emoji: "🐛", Color: 0xff6b6b},
	{Name: "sale", Emoji: "💰", Color: 0xffeb3b},
	{Name: "question", Emoji: "🤔", Color: 0x6c5ce7},
}

// InsertQuickstart creates the starter categories for the user, skipping
// any name the user already owns. Returns the number inserted.
func (s *CategoryService) InsertQuickstart(ctx context.Context, user *model.User) (int, error) {
	existing, err := s.categoryRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	taken := make(map[string]struct{}, len(existing))
	for _, category := range existing {
		taken[category.Name] = struct{}{}
	}

	var missing []model.EventCategory
	for _, category := range quickstartCategories {
		if _, ok := taken[category.Name]; ok {
			continue
		}
		category.UserID = user.ID
		missing = append(missing, category)
	}
	if err := s.categoryRepo.CreateBatch(ctx, missing); err != nil {
		return 0, err
	}
	return len(missing), nil
}

// parseColor packs "#RRGGBB" into an integer, the storage format for
// category colors.
func parseColor(raw string) (int, error) {
	if !colorPattern.MatchString(raw) {
		return 0, apperr.Validation("color must match #RRGGBB")
	}
	value, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 16, 64)
	if err != nil {
		return 0, apperr.Validation("color must match #RRGGBB")
	}
	return int(value), nil
}
