package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/planforge/resplan-api/internal/models"
	appErrors "github.com/planforge/resplan-api/pkg/errors"
)

type planMutator interface {
	AddAssignment(employeeID, projectID, date string, allocation float64) (models.Assignment, error)
	RemoveAssignment(id string) error
	MoveAssignment(id, newEmployeeID, newDate string) (models.Assignment, error)
	ReplaceDay(employeeID, date string, drafts []models.AssignmentDraft) ([]models.Assignment, error)
	ApplyWeekdayPattern(employeeID, anchorDate string, weekdays []time.Weekday, drafts []models.AssignmentDraft) ([]models.Assignment, error)
	AddAbsence(employeeID, date string, kind models.AbsenceType, approved bool) (models.Absence, error)
	AddAbsenceSpan(employeeID, startDate string, days int, kind models.AbsenceType) ([]models.Absence, error)
	RemoveAbsence(id string) error
}

// AssignmentService fronts all plan mutations: payload validation, the store
// operation, cache invalidation and instrumentation.
type AssignmentService struct {
	plan      planMutator
	validator *validator.Validate
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(plan planMutator, validate *validator.Validate, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{plan: plan, validator: validate, cache: cache, metrics: metrics, logger: logger}
}

// AddAssignmentRequest books an allocation for an employee on a day.
type AddAssignmentRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	ProjectID  string  `json:"project_id" validate:"required"`
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	Allocation float64 `json:"allocation" validate:"required,gt=0,lte=1"`
}

// MoveAssignmentRequest shifts a booking to another employee and/or day.
type MoveAssignmentRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
}

// ReplaceDayRequest swaps out everything booked on one day.
type ReplaceDayRequest struct {
	EmployeeID string                   `json:"employee_id" validate:"required"`
	Date       string                   `json:"date" validate:"required,datetime=2006-01-02"`
	Entries    []models.AssignmentDraft `json:"entries" validate:"dive"`
}

// WeekdayPatternRequest repeats a day template across the anchor's month.
// Weekdays follow time.Weekday numbering (0 = Sunday).
type WeekdayPatternRequest struct {
	EmployeeID string                   `json:"employee_id" validate:"required"`
	AnchorDate string                   `json:"anchor_date" validate:"required,datetime=2006-01-02"`
	Weekdays   []int                    `json:"weekdays" validate:"required,min=1,dive,gte=0,lte=6"`
	Entries    []models.AssignmentDraft `json:"entries" validate:"dive"`
}

// AddAbsenceRequest blocks one day for an employee.
type AddAbsenceRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Type       string `json:"type" validate:"required"`
	Approved   bool   `json:"approved"`
}

// AbsenceSpanRequest blocks a stretch of weekdays.
type AbsenceSpanRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	Days       int    `json:"days" validate:"required,gt=0"`
	Type       string `json:"type" validate:"required"`
}

// Add books a new assignment.
func (s *AssignmentService) Add(ctx context.Context, req AddAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	a, err := s.plan.AddAssignment(req.EmployeeID, req.ProjectID, req.Date, req.Allocation)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "assignment added",
		zap.String("assignment_id", a.ID),
		zap.String("employee_id", a.EmployeeID),
		zap.String("date", a.Date))
	return &a, nil
}

// Remove deletes a booking; unknown ids succeed silently.
func (s *AssignmentService) Remove(ctx context.Context, id string) error {
	if err := s.plan.RemoveAssignment(id); err != nil {
		return err
	}
	s.afterMutation(ctx, "assignment removed", zap.String("assignment_id", id))
	return nil
}

// Move relocates a booking, keeping its id and allocation.
func (s *AssignmentService) Move(ctx context.Context, id string, req MoveAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	a, err := s.plan.MoveAssignment(id, req.EmployeeID, req.Date)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "assignment moved",
		zap.String("assignment_id", a.ID),
		zap.String("employee_id", a.EmployeeID),
		zap.String("date", a.Date))
	return &a, nil
}

// ReplaceDay applies the one-click day replacement.
func (s *AssignmentService) ReplaceDay(ctx context.Context, req ReplaceDayRequest) ([]models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	inserted, err := s.plan.ReplaceDay(req.EmployeeID, req.Date, req.Entries)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "day replaced",
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", req.Date),
		zap.Int("bookings", len(inserted)))
	return inserted, nil
}

// ApplyPattern repeats a day template across matching weekdays of a month.
func (s *AssignmentService) ApplyPattern(ctx context.Context, req WeekdayPatternRequest) ([]models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	weekdays := make([]time.Weekday, 0, len(req.Weekdays))
	for _, wd := range req.Weekdays {
		weekdays = append(weekdays, time.Weekday(wd))
	}
	inserted, err := s.plan.ApplyWeekdayPattern(req.EmployeeID, req.AnchorDate, weekdays, req.Entries)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "weekday pattern applied",
		zap.String("employee_id", req.EmployeeID),
		zap.Int("bookings", len(inserted)))
	return inserted, nil
}

// AddAbsence blocks a day, clearing any bookings on it.
func (s *AssignmentService) AddAbsence(ctx context.Context, req AddAbsenceRequest) (*models.Absence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	ab, err := s.plan.AddAbsence(req.EmployeeID, req.Date, models.AbsenceType(req.Type), req.Approved)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "absence added",
		zap.String("absence_id", ab.ID),
		zap.String("employee_id", ab.EmployeeID),
		zap.String("date", ab.Date))
	return &ab, nil
}

// AddAbsenceSpan blocks consecutive weekdays starting at the given day.
func (s *AssignmentService) AddAbsenceSpan(ctx context.Context, req AbsenceSpanRequest) ([]models.Absence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	added, err := s.plan.AddAbsenceSpan(req.EmployeeID, req.StartDate, req.Days, models.AbsenceType(req.Type))
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "absence span added",
		zap.String("employee_id", req.EmployeeID),
		zap.Int("days", len(added)))
	return added, nil
}

// RemoveAbsence deletes an absence; unknown ids succeed silently.
func (s *AssignmentService) RemoveAbsence(ctx context.Context, id string) error {
	if err := s.plan.RemoveAbsence(id); err != nil {
		return err
	}
	s.afterMutation(ctx, "absence removed", zap.String("absence_id", id))
	return nil
}

func (s *AssignmentService) afterMutation(ctx context.Context, msg string, fields ...zap.Field) {
	s.metrics.RecordPlanMutation()
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "plan:*"); err != nil {
			s.logger.Warn("plan cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info(msg, fields...)
}
