package model

import "time"

// Designation is a role definition in the organizational tree (e.g.
// President, General Secretary).  Designations form a tree via
// ParentID; cycles are rejected at the repository layer.  The default
// capacity, fee and validity act as fallbacks whenever no override
// matches a membership's scope.
//
// Fields:
//
//	ID              – primary key identifier.
//	Code            – stable unique identifier (e.g. "PRESIDENT").
//	Name            – display name.
//	ParentID        – parent designation, nil for roots.
//	DefaultCapacity – max concurrent seat holders per bucket.
//	DefaultFeeCents – default fee in minor currency units.
//	Currency        – ISO currency code for the default fee.
//	ValidityDays    – default membership validity in days.
//	DisplayRank     – ordering weight for listings.
type Designation struct {
	ID              uint64    // designations.id
	Code            string    // designations.code
	Name            string    // designations.name
	ParentID        *uint64   // designations.parent_id (nullable)
	DefaultCapacity uint32    // designations.default_capacity
	DefaultFeeCents uint32    // designations.default_fee_cents
	Currency        string    // designations.currency
	ValidityDays    uint32    // designations.validity_days
	DisplayRank     uint32    // designations.display_rank
	CreatedAt       time.Time // designations.created_at
	UpdatedAt       time.Time // designations.updated_at
}

// Cell is an organizational division (e.g. a legal wing or a media
// wing) that can host its own price overrides.  Every membership
// belongs to exactly one cell.
type Cell struct {
	ID        uint64    // cells.id
	Code      string    // cells.code
	Name      string    // cells.name
	IsActive  bool      // cells.is_active
	CreatedAt time.Time // cells.created_at
	UpdatedAt time.Time // cells.updated_at
}
