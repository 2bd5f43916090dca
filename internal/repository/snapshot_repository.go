package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/planforge/resplan-api/internal/models"
)

// SnapshotRepository persists full plan snapshots as JSON documents. The
// latest row wins on load; older rows are retained for point-in-time recovery
// until pruned.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

type snapshotRow struct {
	ID        string    `db:"id"`
	Revision  int64     `db:"revision"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// Save serialises the plan state and inserts a new snapshot row.
func (r *SnapshotRepository) Save(ctx context.Context, state models.PlanState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal plan snapshot: %w", err)
	}
	const query = `INSERT INTO plan_snapshots (id, revision, payload, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), int64(state.Revision), payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("save plan snapshot: %w", err)
	}
	return nil
}

// Load returns the most recent snapshot, or nil when none has been saved yet.
func (r *SnapshotRepository) Load(ctx context.Context) (*models.PlanState, error) {
	const query = `SELECT id, revision, payload, created_at FROM plan_snapshots ORDER BY created_at DESC LIMIT 1`
	var row snapshotRow
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load plan snapshot: %w", err)
	}
	var state models.PlanState
	if err := json.Unmarshal(row.Payload, &state); err != nil {
		return nil, fmt.Errorf("decode plan snapshot %s: %w", row.ID, err)
	}
	return &state, nil
}

// Prune deletes snapshots older than cutoff, keeping at least the newest row.
func (r *SnapshotRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM plan_snapshots
WHERE created_at < $1
  AND id <> (SELECT id FROM plan_snapshots ORDER BY created_at DESC LIMIT 1)`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune plan snapshots: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}
