package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/planforge/resplan-api/internal/models"
)

// HolidayRepository stores the public holiday catalog.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository constructs the repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// List returns all holidays ordered by date.
func (r *HolidayRepository) List(ctx context.Context) ([]models.PublicHoliday, error) {
	const query = `SELECT date, name, location FROM public_holidays ORDER BY date ASC, location ASC`
	var holidays []models.PublicHoliday
	if err := r.db.SelectContext(ctx, &holidays, query); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}

// Upsert inserts or replaces a holiday keyed by (date, location).
func (r *HolidayRepository) Upsert(ctx context.Context, holiday models.PublicHoliday) error {
	const query = `INSERT INTO public_holidays (date, name, location) VALUES ($1, $2, $3)
ON CONFLICT (date, location) DO UPDATE SET name = EXCLUDED.name`
	if _, err := r.db.ExecContext(ctx, query, holiday.Date, holiday.Name, holiday.Location); err != nil {
		return fmt.Errorf("upsert holiday: %w", err)
	}
	return nil
}

// Delete removes a holiday entry. Missing rows are not an error.
func (r *HolidayRepository) Delete(ctx context.Context, date, location string) error {
	const query = `DELETE FROM public_holidays WHERE date = $1 AND location = $2`
	if _, err := r.db.ExecContext(ctx, query, date, location); err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	return nil
}
