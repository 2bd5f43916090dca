package planstore

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/planforge/resplan-api/internal/models"
)

// LoadSeedFile reads an initial plan state from a JSON fixture. Missing
// pieces are normalized so the store always starts with at least one
// version marked active.
func LoadSeedFile(path string) (models.PlanState, error) {
	var state models.PlanState

	raw, err := os.ReadFile(path)
	if err != nil {
		return state, fmt.Errorf("read seed file: %w", err)
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, fmt.Errorf("parse seed file: %w", err)
	}
	return Normalize(state), nil
}

// Normalize fills in the structural defaults a usable plan state needs.
func Normalize(state models.PlanState) models.PlanState {
	if len(state.Versions) == 0 {
		state.Versions = []models.PlanVersion{{
			ID:        "initial",
			Name:      "Initial Plan",
			CreatedAt: time.Now().UTC(),
		}}
	}
	if state.ActiveVersionID == "" {
		state.ActiveVersionID = state.Versions[len(state.Versions)-1].ID
	}
	found := false
	for _, v := range state.Versions {
		if v.ID == state.ActiveVersionID {
			found = true
			break
		}
	}
	if !found {
		state.ActiveVersionID = state.Versions[len(state.Versions)-1].ID
	}
	return state
}
