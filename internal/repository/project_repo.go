package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CH4P4R/thumb-compare/internal/model"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

// List returns all projects in creation order. This is the trending run's
// work-set enumeration: if it fails, the whole run is aborted.
func (r *ProjectRepo) List(ctx context.Context) ([]model.Project, error) {
	query := `
		SELECT id, name, region_code, created_at
		FROM projects
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.RegionCode, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Get returns a single project by ID.
func (r *ProjectRepo) Get(ctx context.Context, projectID string) (*model.Project, error) {
	query := `
		SELECT id, name, region_code, created_at
		FROM projects
		WHERE id = $1`

	var p model.Project
	err := r.pool.QueryRow(ctx, query, projectID).Scan(&p.ID, &p.Name, &p.RegionCode, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
