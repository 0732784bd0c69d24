package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
)

// CellRepo provides access to organizational cells (functional wings).
type CellRepo struct {
	db *sql.DB
}

// NewCellRepo returns a new CellRepo bound to the given database.
func NewCellRepo(db *sql.DB) *CellRepo { return &CellRepo{db: db} }

// Create inserts a cell and populates its generated ID.  Codes are
// stored upper-cased; a duplicate code returns ErrConflict.
func (r *CellRepo) Create(ctx context.Context, c *model.Cell) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cells (code, name, is_active) VALUES (?, ?, ?)`,
		c.Code, c.Name, c.IsActive)
	if err != nil {
		if IsDuplicateEntry(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a cell by primary key; sql.ErrNoRows when absent.
func (r *CellRepo) GetByID(ctx context.Context, id uint64) (*model.Cell, error) {
	var c model.Cell
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, name, is_active, created_at, updated_at FROM cells WHERE id = ?`, id).
		Scan(&c.ID, &c.Code, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all cells, optionally restricted to active ones.
func (r *CellRepo) List(ctx context.Context, activeOnly bool) ([]model.Cell, error) {
	q := `SELECT id, code, name, is_active, created_at, updated_at FROM cells`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Cell, 0)
	for rows.Next() {
		var c model.Cell
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
