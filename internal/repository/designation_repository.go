package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
)

// DesignationRepo provides access to the designation catalog: the
// tree of roles with their default capacity, fee and validity.  All
// timestamp fields are stored in UTC.
type DesignationRepo struct {
	db *sql.DB
}

// NewDesignationRepo returns a new DesignationRepo bound to the given database.
func NewDesignationRepo(db *sql.DB) *DesignationRepo { return &DesignationRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// spanning multiple repositories.
func (r *DesignationRepo) DB() *sql.DB { return r.db }

const designationCols = `id, code, name, parent_id, default_capacity, default_fee_cents, currency, validity_days, display_rank, created_at, updated_at`

func scanDesignation(row interface{ Scan(...interface{}) error }) (*model.Designation, error) {
	var d model.Designation
	var parent sql.NullInt64
	if err := row.Scan(&d.ID, &d.Code, &d.Name, &parent, &d.DefaultCapacity,
		&d.DefaultFeeCents, &d.Currency, &d.ValidityDays, &d.DisplayRank,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		pid := uint64(parent.Int64)
		d.ParentID = &pid
	}
	return &d, nil
}

// Create inserts a designation and populates its generated ID.
func (r *DesignationRepo) Create(ctx context.Context, d *model.Designation) error {
	const q = `INSERT INTO designations
	           (code, name, parent_id, default_capacity, default_fee_cents, currency, validity_days, display_rank)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var parent interface{}
	if d.ParentID != nil {
		parent = *d.ParentID
	}
	res, err := r.db.ExecContext(ctx, q, d.Code, d.Name, parent, d.DefaultCapacity,
		d.DefaultFeeCents, d.Currency, d.ValidityDays, d.DisplayRank)
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
	d.ID = uint64(id)
	return nil
}

// GetByCode resolves a designation by its stable code.  Codes are
// matched case-insensitively after trimming; ErrDesignationNotFound is
// returned when no row exists.
func (r *DesignationRepo) GetByCode(ctx context.Context, code string) (*model.Designation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	d, err := scanDesignation(r.db.QueryRowContext(ctx,
		`SELECT `+designationCols+` FROM designations WHERE code = ?`, code))
	if err == sql.ErrNoRows {
		return nil, ErrDesignationNotFound
	}
	return d, err
}

// GetByID fetches a designation by primary key.
func (r *DesignationRepo) GetByID(ctx context.Context, id uint64) (*model.Designation, error) {
	d, err := scanDesignation(r.db.QueryRowContext(ctx,
		`SELECT `+designationCols+` FROM designations WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrDesignationNotFound
	}
	return d, err
}

// List returns all designations ordered by display rank then name.
func (r *DesignationRepo) List(ctx context.Context) ([]model.Designation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+designationCols+` FROM designations ORDER BY display_rank, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Designation, 0)
	for rows.Next() {
		d, err := scanDesignation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Update rewrites the editable attributes of a designation.
func (r *DesignationRepo) Update(ctx context.Context, d *model.Designation) error {
	const q = `UPDATE designations
	           SET name = ?, default_capacity = ?, default_fee_cents = ?, currency = ?, validity_days = ?, display_rank = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, d.Name, d.DefaultCapacity, d.DefaultFeeCents,
		d.Currency, d.ValidityDays, d.DisplayRank, d.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDesignationNotFound
	}
	return nil
}

// SetParent reparents a designation within the tree.  It walks the
// ancestor chain of the proposed parent inside a transaction and
// fails with ErrCycleDetected when the parent is the designation
// itself or one of its descendants.  Passing parentID 0 detaches the
// designation and makes it a root.
func (r *DesignationRepo) SetParent(ctx context.Context, id, parentID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists uint64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM designations WHERE id = ?`, id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return ErrDesignationNotFound
		}
		return err
	}

	var parent interface{}
	if parentID != 0 {
		if parentID == id {
			return ErrCycleDetected
		}
		// Walk upward from the proposed parent. Hitting id on the way
		// means parentID lives in id's subtree.
		cur := parentID
		for cur != 0 {
			var next sql.NullInt64
			err := tx.QueryRowContext(ctx, `SELECT parent_id FROM designations WHERE id = ?`, cur).Scan(&next)
			if err == sql.ErrNoRows {
				return ErrDesignationNotFound
			}
			if err != nil {
				return err
			}
			if !next.Valid {
				break
			}
			cur = uint64(next.Int64)
			if cur == id {
				return ErrCycleDetected
			}
		}
		parent = parentID
	}

	if _, err := tx.ExecContext(ctx, `UPDATE designations SET parent_id = ? WHERE id = ?`, parent, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
