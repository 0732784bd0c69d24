package repository

import (
	"context"
	"database/sql"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
)

// PriceOverrideRepo provides access to scoped fee/validity records.
// Overrides are fetched per designation without any bucket filter:
// every override for a designation is a candidate for every membership
// of that designation, and the pricing engine ranks candidates by
// specificity score rather than pre-filtering them.
type PriceOverrideRepo struct {
	db *sql.DB
}

// NewPriceOverrideRepo returns a new PriceOverrideRepo bound to the given database.
func NewPriceOverrideRepo(db *sql.DB) *PriceOverrideRepo { return &PriceOverrideRepo{db: db} }

const overrideCols = `id, designation_id, cell_id, level, zone, state_id, district_id, mandal_id,
	fee_cents, currency, validity_days, priority, created_at`

func scanOverride(row interface{ Scan(...interface{}) error }) (*model.PriceOverride, error) {
	var o model.PriceOverride
	var cellID, stateID, districtID, mandalID sql.NullInt64
	var level, zone sql.NullString
	var validity sql.NullInt64
	if err := row.Scan(&o.ID, &o.DesignationID, &cellID, &level, &zone,
		&stateID, &districtID, &mandalID,
		&o.FeeCents, &o.Currency, &validity, &o.Priority, &o.CreatedAt); err != nil {
		return nil, err
	}
	if cellID.Valid {
		v := uint64(cellID.Int64)
		o.CellID = &v
	}
	if level.Valid {
		l := model.Level(level.String)
		o.Level = &l
	}
	if zone.Valid {
		z := model.Zone(zone.String)
		o.Zone = &z
	}
	if stateID.Valid {
		v := uint64(stateID.Int64)
		o.StateID = &v
	}
	if districtID.Valid {
		v := uint64(districtID.Int64)
		o.DistrictID = &v
	}
	if mandalID.Valid {
		v := uint64(mandalID.Int64)
		o.MandalID = &v
	}
	if validity.Valid {
		v := uint32(validity.Int64)
		o.ValidityDays = &v
	}
	return &o, nil
}

// ListByDesignation returns every override for a designation.  The
// ordering here is cosmetic; ranking happens in the pricing engine.
func (r *PriceOverrideRepo) ListByDesignation(ctx context.Context, designationID uint64) ([]model.PriceOverride, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+overrideCols+` FROM price_overrides WHERE designation_id = ? ORDER BY priority DESC, created_at DESC`,
		designationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.PriceOverride, 0)
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// Create inserts an override and populates its generated ID.
func (r *PriceOverrideRepo) Create(ctx context.Context, o *model.PriceOverride) error {
	const q = `INSERT INTO price_overrides
	           (designation_id, cell_id, level, zone, state_id, district_id, mandal_id,
	            fee_cents, currency, validity_days, priority)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []interface{}{o.DesignationID, nullable(o.CellID), nil, nil,
		nullable(o.StateID), nullable(o.DistrictID), nullable(o.MandalID),
		o.FeeCents, o.Currency, nil, o.Priority}
	if o.Level != nil {
		args[2] = string(*o.Level)
	}
	if o.Zone != nil {
		args[3] = string(*o.Zone)
	}
	if o.ValidityDays != nil {
		args[9] = *o.ValidityDays
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// Delete removes an override by ID.
func (r *PriceOverrideRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM price_overrides WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// nullable converts an optional uint64 into a driver-friendly value.
func nullable(v *uint64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
