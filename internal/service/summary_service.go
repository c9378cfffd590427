package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"eventdash/internal/apperr"
	"eventdash/internal/model"
	"eventdash/internal/repository"
)

// SummaryService computes per-category analytics for the dashboard.
//
// Time policy: the "current month" window starts at 00:00:00 on the 1st
// in UTC. Callers inject now so the computation stays deterministic.
type SummaryService struct {
	categoryRepo *repository.CategoryRepository
	eventRepo    *repository.EventRepository
}

func NewSummaryService(categoryRepo *repository.CategoryRepository, eventRepo *repository.EventRepository) *SummaryService {
	return &SummaryService{categoryRepo: categoryRepo, eventRepo: eventRepo}
}

// CategorySummaries returns one summary per category the user owns,
// ordered most-recently-updated first. Summaries for all categories are
// computed concurrently; if any single one fails the whole call fails,
// so the caller always sees a consistent snapshot or an error, never a
// partial mix.
func (s *SummaryService) CategorySummaries(ctx context.Context, userID uint, now time.Time) ([]model.CategorySummary, error) {
	categories, err := s.categoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.CategorySummary, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			summary, err := s.summarize(gctx, category, now)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// summarize computes the three metrics for one category. The queries are
// independent reads and run concurrently; the first failure cancels the
// remaining ones.
func (s *SummaryService) summarize(ctx context.Context, category model.EventCategory, now time.Time) (model.CategorySummary, error) {
	since := startOfMonth(now)

	var (
		payloads  []datatypes.JSONMap
		count     int64
		lastEvent *model.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payloads, err = s.eventRepo.DistinctFieldPayloads(gctx, category.ID, since)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.eventRepo.CountSince(gctx, category.ID, since)
		return err
	})
	g.Go(func() error {
		var err error
		lastEvent, err = s.eventRepo.MostRecent(gctx, category.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.CategorySummary{}, fmt.Errorf("summarize category %q: %w", category.Name, err)
	}

	summary := model.CategorySummary{
		ID:               category.ID,
		Name:             category.Name,
		Color:            category.Color,
		Emoji:            category.Emoji,
		CreatedAt:        category.CreatedAt,
		UpdatedAt:        category.UpdatedAt,
		UniqueFieldCount: uniqueFieldCount(payloads),
		EventsCount:      count,
	}
	if lastEvent != nil {
		lastPing := lastEvent.CreatedAt
		summary.LastPing = &lastPing
	}
	return summary, nil
}

// PollCategory answers whether the named category has received at least
// one event ever. Clients call it on an interval while waiting for their
// first ping to arrive.
func (s *SummaryService) PollCategory(ctx context.Context, userID uint, name string) (bool, error) {
	if err := ValidateCategoryName(name); err != nil {
		return false, err
	}

	category, err := s.categoryRepo.FindByName(ctx, userID, name)
	switch {
	case err == nil:
	case err == gorm.ErrRecordNotFound:
		return false, apperr.NotFound(fmt.Sprintf("Category %q not found", name))
	default:
		return false, err
	}

	count, err := s.eventRepo.CountAll(ctx, category.ID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// uniqueFieldCount is the schema introspector: the number of distinct
// top-level keys across the union of all payloads. Values are ignored
// and nested objects are not descended into.
func uniqueFieldCount(payloads []datatypes.JSONMap) int {
	fieldNames := make(map[string]struct{})
	for _, payload := range payloads {
		for key := range payload {
			fieldNames[key] = struct{}{}
		}
	}
	return len(fieldNames)
}

// startOfMonth truncates now to 00:00:00 on the 1st, in UTC.
func startOfMonth(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
