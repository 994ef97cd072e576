package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CH4P4R/thumb-compare/internal/model"
)

// RunRepo is the append-only audit sink. Records are never updated or
// deleted by the pipeline; no retention policy is applied here.
type RunRepo struct {
	pool *pgxpool.Pool
}

func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Append writes one run record. Callers treat failures here as best-effort:
// a failed audit write must not change a unit's reported outcome.
func (r *RunRepo) Append(ctx context.Context, rec model.RunRecord) error {
	detail, err := json.Marshal(rec.Detail)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO job_logs (type, status, detail) VALUES ($1, $2, $3)`,
		rec.Type, rec.Status, detail)
	return err
}

// Recent returns the newest run records, most recent first.
func (r *RunRepo) Recent(ctx context.Context, limit int) ([]model.RunRecord, error) {
	query := `
		SELECT id, type, status, detail, created_at
		FROM job_logs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.RunRecord
	for rows.Next() {
		var rec model.RunRecord
		var detail []byte
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Status, &detail, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &rec.Detail); err != nil {
				return nil, err
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
