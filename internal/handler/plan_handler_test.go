package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/resplan-api/internal/dto"
	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/internal/planstore"
	"github.com/planforge/resplan-api/internal/service"
	"github.com/planforge/resplan-api/pkg/response"
)

// newHandlerTestStore seeds a small in-memory plan shared by handler tests.
func newHandlerTestStore() *planstore.Store {
	vol := 40.0
	state := models.PlanState{
		Employees: []models.Employee{
			{ID: "emp-1", Name: "Ada", Role: "Engineer", Location: "DE", Availability: 100},
			{ID: "emp-2", Name: "Grace", Role: "Consultant", Location: "DE", Availability: 80},
		},
		Projects: []models.Project{
			{ID: "proj-1", Name: "Atlas", Client: "Acme", Budget: "100k"},
			{ID: "proj-2", Name: "Borealis", Client: "Globex", Budget: "1.2m", Critical: true},
		},
		Holidays: []models.PublicHoliday{
			{Date: "2025-10-03", Name: "Unity Day", Location: "DE"},
		},
		Versions: []models.PlanVersion{{
			ID:        "ver-0",
			Name:      "Initial Plan",
			CreatedAt: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			Quarters: []models.QuarterData{{
				ID:   "q3-2025",
				Name: "Q3 2025",
				RunningProjects: []models.ForecastEntry{
					{ID: "run-1", ProjectID: "proj-1", Name: "Atlas", Volume: &vol},
				},
			}},
		}},
		ActiveVersionID: "ver-0",
	}
	return planstore.New(state)
}

func newPlanHandlerForTest() (*PlanHandler, *planstore.Store) {
	store := newHandlerTestStore()
	plans := service.NewPlanService(store, nil, nil, 0)
	holidays := service.NewHolidayService(store, nil, nil, nil)
	return NewPlanHandler(plans, holidays), store
}

func TestPlanHandlerBoardRequiresMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newPlanHandlerForTest()

	c, w := newGinContext(http.MethodGet, "/plan/board", nil)
	handler.Board(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanHandlerBoard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newPlanHandlerForTest()
	_, err := store.AddAssignment("emp-1", "proj-1", "2025-07-07", 0.5)
	require.NoError(t, err)

	c, w := newGinContext(http.MethodGet, "/plan/board?month=2025-07", nil)
	handler.Board(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data dto.PlanBoardResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "2025-07", envelope.Data.Month)
	assert.Len(t, envelope.Data.Days, 31)
	assert.Len(t, envelope.Data.Rows, 2)
}

func TestPlanHandlerAddHoliday(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newPlanHandlerForTest()

	payload, _ := json.Marshal(models.PublicHoliday{Date: "2025-12-24", Name: "Christmas Eve", Location: "DE"})
	c, w := newGinContext(http.MethodPost, "/plan/holidays", payload)
	handler.AddHoliday(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.Holidays(), 2)
}

func TestPlanHandlerRemoveHoliday(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newPlanHandlerForTest()

	c, w := newGinContext(http.MethodDelete, "/plan/holidays/2025-10-03?location=DE", nil)
	c.Params = gin.Params{{Key: "date", Value: "2025-10-03"}}
	handler.RemoveHoliday(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.Holidays())
}

func TestPlanHandlerEmployees(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newPlanHandlerForTest()

	c, w := newGinContext(http.MethodGet, "/plan/employees", nil)
	handler.Employees(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotNil(t, envelope.Data)
}
