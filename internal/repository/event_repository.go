package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"eventdash/internal/model"
)

// EventRepository is the typed query surface the aggregation engine reads
// from. All queries are read-only except Create and PurgeOlderThan.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// DistinctFieldPayloads returns one payload per distinct serialized
// fields value among the category's events created at or after since.
// Distinctness is by the exact stored JSON, not by key set: two events
// with the same keys but different values yield two rows. The schema
// introspector only reads keys, so that is harmless, and it matches the
// wire-visible behavior of the store's DISTINCT on the column.
func (r *EventRepository) DistinctFieldPayloads(ctx context.Context, categoryID uint, since time.Time) ([]datatypes.JSONMap, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Distinct("fields").
		Where("event_category_id = ? AND created_at >= ?", categoryID, since).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("distinct field payloads: %w", err)
	}
	payloads := make([]datatypes.JSONMap, len(events))
	for i, ev := range events {
		payloads[i] = ev.Fields
	}
	return payloads, nil
}

// CountSince counts the category's events created at or after since.
func (r *EventRepository) CountSince(ctx context.Context, categoryID uint, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("event_category_id = ? AND created_at >= ?", categoryID, since).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// MostRecent returns the newest event ever recorded for the category, or
// nil when the category has no events. Deliberately unscoped by time.
func (r *EventRepository) MostRecent(ctx context.Context, categoryID uint) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Where("event_category_id = ?", categoryID).
		Order("created_at DESC").
		First(&event).Error
	switch {
	case err == nil:
		return &event, nil
	case err == gorm.ErrRecordNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("most recent event: %w", err)
	}
}

// CountAll counts every event ever recorded for the category.
func (r *EventRepository) CountAll(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("event_category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count all events: %w", err)
	}
	return count, nil
}

// PurgeOlderThan deletes events created before cutoff and reports how
// many rows went away. Used by the retention job.
func (r *EventRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.Event{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge events: %w", res.Error)
	}
	return res.RowsAffected, nil
}
