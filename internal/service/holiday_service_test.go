package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/internal/planstore"
)

type holidayCatalogStub struct {
	upserts []models.PublicHoliday
	deletes []string
	err     error
}

func (c *holidayCatalogStub) List(ctx context.Context) ([]models.PublicHoliday, error) {
	return nil, nil
}

func (c *holidayCatalogStub) Upsert(ctx context.Context, holiday models.PublicHoliday) error {
	if c.err != nil {
		return c.err
	}
	c.upserts = append(c.upserts, holiday)
	return nil
}

func (c *holidayCatalogStub) Delete(ctx context.Context, date, location string) error {
	if c.err != nil {
		return c.err
	}
	c.deletes = append(c.deletes, date+"|"+location)
	return nil
}

func newHolidayServiceForTest(t *testing.T) (*HolidayService, *holidayCatalogStub, *cacheRepoStub, *planstore.Store) {
	t.Helper()
	plan := newSeededPlan(t)
	catalog := &holidayCatalogStub{}
	repo := newCacheRepoStub()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc := NewHolidayService(plan, catalog, cache, nil)
	return svc, catalog, repo, plan
}

func TestHolidayListSorted(t *testing.T) {
	svc, _, _, _ := newHolidayServiceForTest(t)

	holidays := svc.List()
	require.Len(t, holidays, 2)
	assert.Equal(t, "2025-10-03", holidays[0].Date)
	assert.Equal(t, "2025-12-25", holidays[1].Date)
}

func TestHolidayAddPersistsAndUpdatesPlan(t *testing.T) {
	svc, catalog, repo, plan := newHolidayServiceForTest(t)

	added, err := svc.Add(context.Background(), models.PublicHoliday{Date: "2025-12-24", Name: "Christmas Eve", Location: "DE"})
	require.NoError(t, err)
	assert.Equal(t, "DE", added.Location)

	require.Len(t, catalog.upserts, 1)
	assert.Len(t, plan.Holidays(), 3)
	assert.Contains(t, repo.patterns, "plan:*")
}

func TestHolidayAddDefaultsLocation(t *testing.T) {
	svc, _, _, _ := newHolidayServiceForTest(t)

	added, err := svc.Add(context.Background(), models.PublicHoliday{Date: "2026-01-01", Name: "New Year"})
	require.NoError(t, err)
	assert.Equal(t, models.HolidayAllLocations, added.Location)
}

func TestHolidayAddReplacesSameDay(t *testing.T) {
	svc, _, _, plan := newHolidayServiceForTest(t)

	_, err := svc.Add(context.Background(), models.PublicHoliday{Date: "2025-10-03", Name: "German Unity Day", Location: "DE"})
	require.NoError(t, err)

	holidays := plan.Holidays()
	assert.Len(t, holidays, 2)
	for _, h := range holidays {
		if h.Date == "2025-10-03" {
			assert.Equal(t, "German Unity Day", h.Name)
		}
	}
}

func TestHolidayAddValidation(t *testing.T) {
	svc, _, _, _ := newHolidayServiceForTest(t)

	_, err := svc.Add(context.Background(), models.PublicHoliday{Date: "03.10.2025", Name: "Unity Day"})
	require.Error(t, err)

	_, err = svc.Add(context.Background(), models.PublicHoliday{Date: "2025-10-03"})
	require.Error(t, err)
}

func TestHolidayRemove(t *testing.T) {
	svc, catalog, repo, plan := newHolidayServiceForTest(t)

	err := svc.Remove(context.Background(), "2025-10-03", "DE")
	require.NoError(t, err)

	require.Len(t, catalog.deletes, 1)
	assert.Len(t, plan.Holidays(), 1)
	assert.Contains(t, repo.patterns, "plan:*")
}
