package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/pkg/calendar"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

type holidayCatalog interface {
	List(ctx context.Context) ([]models.PublicHoliday, error)
	Upsert(ctx context.Context, holiday models.PublicHoliday) error
	Delete(ctx context.Context, date, location string) error
}

type holidayPlanState interface {
	Holidays() []models.PublicHoliday
	Snapshot() models.PlanState
	Restore(state models.PlanState)
}

// HolidayService manages the public holiday catalog. Changes are persisted
// and then folded into the live plan state so capacity figures pick them up
// immediately.
type HolidayService struct {
	plan    holidayPlanState
	catalog holidayCatalog
	cache   *CacheService
	logger  *zap.Logger
}

// NewHolidayService constructs the service. The catalog may be nil when the
// holiday table is not available; changes then live in memory only.
func NewHolidayService(plan holidayPlanState, catalog holidayCatalog, cache *CacheService, logger *zap.Logger) *HolidayService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayService{plan: plan, catalog: catalog, cache: cache, logger: logger}
}

// List returns the holiday catalog ordered by date.
func (s *HolidayService) List() []models.PublicHoliday {
	holidays := s.plan.Holidays()
	sort.Slice(holidays, func(i, j int) bool {
		if holidays[i].Date != holidays[j].Date {
			return holidays[i].Date < holidays[j].Date
		}
		return holidays[i].Location < holidays[j].Location
	})
	return holidays
}

// Add inserts or updates a holiday entry.
func (s *HolidayService) Add(ctx context.Context, holiday models.PublicHoliday) (models.PublicHoliday, error) {
	if _, err := calendar.ParseDay(holiday.Date); err != nil {
		return models.PublicHoliday{}, appErrors.Clone(appErrors.ErrValidation, "date must be yyyy-MM-dd")
	}
	if holiday.Name == "" {
		return models.PublicHoliday{}, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	if holiday.Location == "" {
		holiday.Location = models.HolidayAllLocations
	}
	if s.catalog != nil {
		if err := s.catalog.Upsert(ctx, holiday); err != nil {
			return models.PublicHoliday{}, err
		}
	}

	state := s.plan.Snapshot()
	replaced := false
	for i, h := range state.Holidays {
		if h.Date == holiday.Date && h.Location == holiday.Location {
			state.Holidays[i] = holiday
			replaced = true
			break
		}
	}
	if !replaced {
		state.Holidays = append(state.Holidays, holiday)
	}
	s.plan.Restore(state)
	s.invalidate(ctx)
	s.logger.Info("holiday added",
		zap.String("date", holiday.Date),
		zap.String("location", holiday.Location))
	return holiday, nil
}

// Remove deletes a holiday entry; unknown entries succeed silently.
func (s *HolidayService) Remove(ctx context.Context, date, location string) error {
	if location == "" {
		location = models.HolidayAllLocations
	}
	if s.catalog != nil {
		if err := s.catalog.Delete(ctx, date, location); err != nil {
			return err
		}
	}

	state := s.plan.Snapshot()
	kept := state.Holidays[:0]
	for _, h := range state.Holidays {
		if h.Date == date && h.Location == location {
			continue
		}
		kept = append(kept, h)
	}
	state.Holidays = kept
	s.plan.Restore(state)
	s.invalidate(ctx)
	return nil
}

func (s *HolidayService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "plan:*"); err != nil {
		s.logger.Warn("plan cache invalidation failed", zap.Error(err))
	}
}
