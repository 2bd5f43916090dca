package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/resplan-api/internal/planstore"
	"github.com/planforge/resplan-api/internal/service"
)

func newAssignmentHandlerForTest() (*AssignmentHandler, *planstore.Store) {
	store := newHandlerTestStore()
	svc := service.NewAssignmentService(store, nil, nil, nil, nil)
	return NewAssignmentHandler(svc), store
}

func TestAssignmentHandlerAdd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newAssignmentHandlerForTest()

	payload, _ := json.Marshal(service.AddAssignmentRequest{
		EmployeeID: "emp-1",
		ProjectID:  "proj-1",
		Date:       "2025-07-07",
		Allocation: 0.5,
	})
	c, w := newGinContext(http.MethodPost, "/assignments", payload)
	handler.Add(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.Assignments(), 1)
}

func TestAssignmentHandlerAddRejectsBadAllocation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAssignmentHandlerForTest()

	payload, _ := json.Marshal(service.AddAssignmentRequest{
		EmployeeID: "emp-1",
		ProjectID:  "proj-1",
		Date:       "2025-07-07",
		Allocation: 1.5,
	})
	c, w := newGinContext(http.MethodPost, "/assignments", payload)
	handler.Add(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerRemove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newAssignmentHandlerForTest()
	booked, err := store.AddAssignment("emp-1", "proj-1", "2025-07-07", 0.5)
	require.NoError(t, err)

	c, w := newGinContext(http.MethodDelete, "/assignments/"+booked.ID, nil)
	c.Params = gin.Params{{Key: "id", Value: booked.ID}}
	handler.Remove(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.Assignments())
}

func TestAssignmentHandlerMove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newAssignmentHandlerForTest()
	booked, err := store.AddAssignment("emp-1", "proj-1", "2025-07-07", 0.5)
	require.NoError(t, err)

	payload, _ := json.Marshal(service.MoveAssignmentRequest{EmployeeID: "emp-2", Date: "2025-07-08"})
	c, w := newGinContext(http.MethodPatch, "/assignments/"+booked.ID+"/move", payload)
	c.Params = gin.Params{{Key: "id", Value: booked.ID}}
	handler.Move(c)

	require.Equal(t, http.StatusOK, w.Code)
	moved := store.Assignments()
	require.Len(t, moved, 1)
	assert.Equal(t, "emp-2", moved[0].EmployeeID)
	assert.Equal(t, "2025-07-08", moved[0].Date)
}

func TestAssignmentHandlerAddAbsence(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newAssignmentHandlerForTest()

	payload, _ := json.Marshal(service.AddAbsenceRequest{
		EmployeeID: "emp-1",
		Date:       "2025-07-09",
		Type:       "vacation",
	})
	c, w := newGinContext(http.MethodPost, "/absences", payload)
	handler.AddAbsence(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.Absences(), 1)
}
