package model

import "time"

// MembershipStatus enumerates the lifecycle states of a seat.
type MembershipStatus string

const (
	StatusPendingPayment  MembershipStatus = "PENDING_PAYMENT"
	StatusPendingApproval MembershipStatus = "PENDING_APPROVAL"
	StatusActive          MembershipStatus = "ACTIVE"
	StatusExpired         MembershipStatus = "EXPIRED"
	StatusRevoked         MembershipStatus = "REVOKED"
)

// Terminal reports whether s admits no further transitions other than
// administrative purge.  EXPIRED and REVOKED memberships keep their
// rows for audit but never return to circulation.
func (s MembershipStatus) Terminal() bool {
	return s == StatusExpired || s == StatusRevoked
}

// PaymentStatus enumerates the payment outcome attached to a membership.
type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "PENDING"
	PaymentNotRequired PaymentStatus = "NOT_REQUIRED"
	PaymentSuccess     PaymentStatus = "SUCCESS"
	PaymentFailed      PaymentStatus = "FAILED"
)

// Membership is a seat occupancy record: one user holding one seat in
// one bucket.  SeatSequence is assigned exactly once per bucket entry
// (at creation or at reassignment into a new bucket) and is never
// reused.  Version is an optimistic-concurrency token bumped on every
// mutating update; LockedAt is a soft advisory marker set while a
// reassignment is in flight and is not a substitute for the version
// check.
//
// Fields:
//
//	ID            – primary key identifier.
//	UserID        – seat holder.
//	CellID..MandalID – the scope tuple (see Scope).
//	BucketKey     – canonical encoding of the scope tuple.
//	SeatSequence  – ordinal within the bucket, unique, starts at 1.
//	Status        – lifecycle state.
//	PaymentStatus – payment outcome.
//	FeeCents      – resolved fee at allocation time, minor units.
//	Currency      – currency of FeeCents.
//	ValidityDays  – resolved validity at allocation time.
//	PaymentRef    – external payment provider reference, if any.
//	ActivatedAt   – set on activation.
//	ExpiresAt     – ActivatedAt + ValidityDays.
//	LockedAt      – advisory reassignment marker (nullable).
//	Version       – optimistic-concurrency counter.
type Membership struct {
	ID            uint64           // memberships.id
	UserID        uint64           // memberships.user_id
	CellID        uint64           // memberships.cell_id
	DesignationID uint64           // memberships.designation_id
	Level         Level            // memberships.level
	Zone          Zone             // memberships.zone (nullable)
	CountryID     uint64           // memberships.country_id (nullable)
	StateID       uint64           // memberships.state_id (nullable)
	DistrictID    uint64           // memberships.district_id (nullable)
	MandalID      uint64           // memberships.mandal_id (nullable)
	BucketKey     string           // memberships.bucket_key
	SeatSequence  uint32           // memberships.seat_sequence
	Status        MembershipStatus // memberships.status
	PaymentStatus PaymentStatus    // memberships.payment_status
	FeeCents      uint32           // memberships.fee_cents
	Currency      string           // memberships.currency
	ValidityDays  uint32           // memberships.validity_days
	PaymentRef    *string          // memberships.payment_ref (nullable)
	ActivatedAt   *time.Time       // memberships.activated_at (nullable)
	ExpiresAt     *time.Time       // memberships.expires_at (nullable)
	LockedAt      *time.Time       // memberships.locked_at (nullable)
	Version       uint32           // memberships.version
	CreatedAt     time.Time        // memberships.created_at
	UpdatedAt     time.Time        // memberships.updated_at
}

// Scope reconstructs the scope tuple from the membership's stored
// columns.
func (m *Membership) Scope() Scope {
	return Scope{
		CellID:        m.CellID,
		DesignationID: m.DesignationID,
		Level:         m.Level,
		Zone:          m.Zone,
		CountryID:     m.CountryID,
		StateID:       m.StateID,
		DistrictID:    m.DistrictID,
		MandalID:      m.MandalID,
	}
}
