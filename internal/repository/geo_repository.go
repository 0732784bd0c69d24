package repository

import (
	"context"
	"database/sql"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
)

// GeoRepo provides read access to the geographic tree
// (countries → states → districts → mandals).  Geographic rows are
// created by administrative seeding and, once referenced by
// memberships, change only through administrative corrections, so
// this repository exposes lookups and simple inserts without update
// or delete operations.
type GeoRepo struct {
	db *sql.DB
}

// NewGeoRepo returns a new GeoRepo bound to the given database.
func NewGeoRepo(db *sql.DB) *GeoRepo { return &GeoRepo{db: db} }

// Countries returns all countries ordered by name.
func (r *GeoRepo) Countries(ctx context.Context) ([]model.Country, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM countries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Country, 0)
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// StatesByCountry returns the states of a country ordered by name.
func (r *GeoRepo) StatesByCountry(ctx context.Context, countryID uint64) ([]model.State, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, country_id, name, zone, created_at FROM states WHERE country_id = ? ORDER BY name`,
		countryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.State, 0)
	for rows.Next() {
		var s model.State
		if err := rows.Scan(&s.ID, &s.CountryID, &s.Name, &s.Zone, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// StateByID fetches one state; sql.ErrNoRows when absent.
func (r *GeoRepo) StateByID(ctx context.Context, id uint64) (*model.State, error) {
	var s model.State
	err := r.db.QueryRowContext(ctx,
		`SELECT id, country_id, name, zone, created_at FROM states WHERE id = ?`, id).
		Scan(&s.ID, &s.CountryID, &s.Name, &s.Zone, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DistrictsByState returns the districts of a state ordered by name.
func (r *GeoRepo) DistrictsByState(ctx context.Context, stateID uint64) ([]model.District, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, state_id, name, created_at FROM districts WHERE state_id = ? ORDER BY name`,
		stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.District, 0)
	for rows.Next() {
		var d model.District
		if err := rows.Scan(&d.ID, &d.StateID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MandalsByDistrict returns the mandals of a district ordered by name.
func (r *GeoRepo) MandalsByDistrict(ctx context.Context, districtID uint64) ([]model.Mandal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, district_id, name, created_at FROM mandals WHERE district_id = ? ORDER BY name`,
		districtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Mandal, 0)
	for rows.Next() {
		var m model.Mandal
		if err := rows.Scan(&m.ID, &m.DistrictID, &m.Name, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// VerifyScopeGeo checks that the geographic IDs carried by a validated
// scope reference existing rows that chain correctly
// (mandal → district → state).  It returns false when any referenced
// row is missing or belongs to a different parent.
func (r *GeoRepo) VerifyScopeGeo(ctx context.Context, s model.Scope) (bool, error) {
	switch s.Level {
	case model.LevelNational:
		var id uint64
		err := r.db.QueryRowContext(ctx, `SELECT id FROM countries WHERE id = ?`, s.CountryID).Scan(&id)
		if err == sql.ErrNoRows {
			return false, nil
		}
		return err == nil, err
	case model.LevelZone:
		return s.Zone.Valid(), nil
	case model.LevelState:
		var id uint64
		err := r.db.QueryRowContext(ctx, `SELECT id FROM states WHERE id = ?`, s.StateID).Scan(&id)
		if err == sql.ErrNoRows {
			return false, nil
		}
		return err == nil, err
	case model.LevelDistrict:
		var id uint64
		err := r.db.QueryRowContext(ctx,
			`SELECT id FROM districts WHERE id = ? AND state_id = ?`, s.DistrictID, s.StateID).Scan(&id)
		if err == sql.ErrNoRows {
			return false, nil
		}
		return err == nil, err
	case model.LevelMandal:
		var id uint64
		err := r.db.QueryRowContext(ctx,
			`SELECT m.id FROM mandals m
			 JOIN districts d ON d.id = m.district_id
			 WHERE m.id = ? AND m.district_id = ? AND d.state_id = ?`,
			s.MandalID, s.DistrictID, s.StateID).Scan(&id)
		if err == sql.ErrNoRows {
			return false, nil
		}
		return err == nil, err
	}
	return false, nil
}

// CreateCountry, CreateState, CreateDistrict and CreateMandal insert
// geographic rows for administrative seeding.  Duplicate names within
// a parent return ErrConflict.

func (r *GeoRepo) CreateCountry(ctx context.Context, c *model.Country) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO countries (name) VALUES (?)`, c.Name)
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

func (r *GeoRepo) CreateState(ctx context.Context, s *model.State) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO states (country_id, name, zone) VALUES (?, ?, ?)`,
		s.CountryID, s.Name, s.Zone)
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
	s.ID = uint64(id)
	return nil
}

func (r *GeoRepo) CreateDistrict(ctx context.Context, d *model.District) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO districts (state_id, name) VALUES (?, ?)`, d.StateID, d.Name)
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

func (r *GeoRepo) CreateMandal(ctx context.Context, m *model.Mandal) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO mandals (district_id, name) VALUES (?, ?)`, m.DistrictID, m.Name)
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
	m.ID = uint64(id)
	return nil
}
