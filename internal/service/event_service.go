package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"eventdash/internal/apperr"
	"eventdash/internal/model"
	"eventdash/internal/repository"
)

// EventService records incoming events and owns the retention purge.
type EventService struct {
	eventRepo    *repository.EventRepository
	categoryRepo *repository.CategoryRepository
	log          *zap.Logger
}

func NewEventService(eventRepo *repository.EventRepository, categoryRepo *repository.CategoryRepository, log *zap.Logger) *EventService {
	return &EventService{eventRepo: eventRepo, categoryRepo: categoryRepo, log: log}
}

// Record stores one event under the user's named category and advances
// the category's updated_at, which is what keeps the dashboard listing
// ordered by recent activity. Events are immutable once stored.
func (s *EventService) Record(ctx context.Context, user *model.User, categoryName string, fields map[string]any, now time.Time) (*model.Event, error) {
	if err := ValidateCategoryName(categoryName); err != nil {
		return nil, err
	}
	categoryName = strings.ToLower(categoryName)

	category, err := s.categoryRepo.FindByName(ctx, user.ID, categoryName)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound(fmt.Sprintf("Category %q not found", categoryName))
	default:
		return nil, err
	}

	event := model.Event{
		EventCategoryID: category.ID,
		Fields:          datatypes.JSONMap(fields),
		CreatedAt:       now,
	}
	if err := s.eventRepo.Create(ctx, &event); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Touch(ctx, category.ID, now); err != nil {
		return nil, err
	}

	s.log.Info("event recorded",
		zap.String("category", category.Name),
		zap.Uint("user_id", user.ID),
		zap.Int("field_count", len(fields)))
	return &event, nil
}

// PurgeExpired deletes events older than the retention horizon.
func (s *EventService) PurgeExpired(ctx context.Context, retentionDays int, now time.Time) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := now.UTC().AddDate(0, 0, -retentionDays)
	purged, err := s.eventRepo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if purged > 0 {
		s.log.Info("purged expired events",
			zap.Int64("count", purged),
			zap.Time("cutoff", cutoff))
	}
	return nil
}
