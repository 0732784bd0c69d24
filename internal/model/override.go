package model

import "time"

// PriceOverride is a scoped fee/validity record for a designation.
// The partial scope fields are used only for matching: all overrides
// for a designation are candidates for every membership of that
// designation, and the most specific one wins by weighted score.  A
// nil field means "does not participate in matching", not "matches
// nothing".
//
// Fields:
//
//	ID            – primary key identifier.
//	DesignationID – designation the override applies to.
//	CellID..MandalID – optional partial scope used for scoring.
//	FeeCents      – fee in minor currency units.
//	Currency      – ISO currency code.
//	ValidityDays  – optional validity override; nil keeps the
//	                designation default.
//	Priority      – explicit tie-break weight (higher wins).
type PriceOverride struct {
	ID            uint64    // price_overrides.id
	DesignationID uint64    // price_overrides.designation_id
	CellID        *uint64   // price_overrides.cell_id (nullable)
	Level         *Level    // price_overrides.level (nullable)
	Zone          *Zone     // price_overrides.zone (nullable)
	StateID       *uint64   // price_overrides.state_id (nullable)
	DistrictID    *uint64   // price_overrides.district_id (nullable)
	MandalID      *uint64   // price_overrides.mandal_id (nullable)
	FeeCents      uint32    // price_overrides.fee_cents
	Currency      string    // price_overrides.currency
	ValidityDays  *uint32   // price_overrides.validity_days (nullable)
	Priority      int32     // price_overrides.priority
	CreatedAt     time.Time // price_overrides.created_at
}

// CapacityOverride pins the capacity of one exact bucket.  Unlike
// price overrides there is no scoring: either a row exists for the
// bucket key or the designation default applies.
type CapacityOverride struct {
	ID        uint64    // capacity_overrides.id
	BucketKey string    // capacity_overrides.bucket_key
	Capacity  uint32    // capacity_overrides.capacity
	CreatedAt time.Time // capacity_overrides.created_at
}
