package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
)

// seatRetryBudget bounds the duplicate-key retry loop when two
// allocations race for the same seat ordinal.  The loop re-reads the
// bucket max each attempt, so exhausting the budget means sustained
// contention and the caller should retry the whole request.
const seatRetryBudget = 3

// Allocator enforces per-bucket capacity and assigns seat ordinals.
// Every allocation runs as one transaction: capacity resolution,
// occupancy count, ordinal computation, fee resolution and the insert
// either all commit or leave nothing behind.
type Allocator struct {
	Memberships *repository.MembershipRepo
	Designation *repository.DesignationRepo
	Overrides   *repository.PriceOverrideRepo
	Capacities  *repository.CapacityOverrideRepo
	Geo         *repository.GeoRepo
}

// NewAllocator constructs an Allocator.  All dependencies must be non-nil.
func NewAllocator(m *repository.MembershipRepo, d *repository.DesignationRepo,
	o *repository.PriceOverrideRepo, c *repository.CapacityOverrideRepo, g *repository.GeoRepo) *Allocator {
	if m == nil || d == nil || o == nil || c == nil || g == nil {
		panic("nil repository passed to NewAllocator")
	}
	return &Allocator{Memberships: m, Designation: d, Overrides: o, Capacities: c, Geo: g}
}

// Availability reports the remaining seats and the quote for a bucket
// without taking any locks.  The count can be stale by the time the
// caller joins; Allocate re-checks under locks.
type Availability struct {
	SeatsRemaining uint32 `json:"seats_remaining"`
	Capacity       uint32 `json:"capacity"`
	Quote
}

// checkScope validates the shape of the scope and verifies that its
// geographic references exist and chain correctly.
func (a *Allocator) checkScope(ctx context.Context, s model.Scope) error {
	if err := s.Validate(); err != nil {
		return repository.ErrInvalidScope
	}
	ok, err := a.Geo.VerifyScopeGeo(ctx, s)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrInvalidScope
	}
	return nil
}

// QuoteScope resolves the fee and validity for a scope: all of the
// designation's overrides are candidates, ranked by specificity
// against the scope.
func (a *Allocator) QuoteScope(ctx context.Context, d *model.Designation, s model.Scope) (Quote, error) {
	overrides, err := a.Overrides.ListByDesignation(ctx, d.ID)
	if err != nil {
		return Quote{}, err
	}
	return ResolveQuote(d, s, overrides), nil
}

// CheckAvailability returns the effective capacity, remaining seats
// and quote for a scope.
func (a *Allocator) CheckAvailability(ctx context.Context, s model.Scope) (*Availability, error) {
	if err := a.checkScope(ctx, s); err != nil {
		return nil, err
	}
	d, err := a.Designation.GetByID(ctx, s.DesignationID)
	if err != nil {
		return nil, err
	}
	bucketKey := s.BucketKey()
	capacity, found, err := a.Capacities.GetForBucket(ctx, bucketKey)
	if err != nil {
		return nil, err
	}
	if !found {
		capacity = d.DefaultCapacity
	}
	occupied, err := a.Memberships.CountOccupied(ctx, bucketKey, 0)
	if err != nil {
		return nil, err
	}
	remaining := uint32(0)
	if occupied < capacity {
		remaining = capacity - occupied
	}
	quote, err := a.QuoteScope(ctx, d, s)
	if err != nil {
		return nil, err
	}
	return &Availability{SeatsRemaining: remaining, Capacity: capacity, Quote: quote}, nil
}

// Allocate claims a seat in the bucket addressed by scope for the
// requesting user.  On success the returned membership is
// PENDING_PAYMENT when a fee is due and PENDING_APPROVAL when the
// resolved fee is zero.  Fails with ErrInvalidScope,
// ErrNoSeatsAvailable or ErrConcurrentModification (transient, caller
// may retry).
func (a *Allocator) Allocate(ctx context.Context, userID uint64, s model.Scope) (*model.Membership, error) {
	if err := a.checkScope(ctx, s); err != nil {
		return nil, err
	}
	d, err := a.Designation.GetByID(ctx, s.DesignationID)
	if err != nil {
		return nil, err
	}
	// Candidate overrides can be read outside the transaction: the
	// quote depends only on catalog data, not on bucket occupancy.
	quote, err := a.QuoteScope(ctx, d, s)
	if err != nil {
		return nil, err
	}
	bucketKey := s.BucketKey()

	tx, err := a.Memberships.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	capacity, found, err := a.Capacities.GetForBucketTx(ctx, tx, bucketKey)
	if err != nil {
		return nil, err
	}
	if !found {
		capacity = d.DefaultCapacity
	}
	occupied, err := a.Memberships.CountOccupiedTx(ctx, tx, bucketKey, 0)
	if err != nil {
		return nil, err
	}
	if occupied >= capacity {
		return nil, repository.ErrNoSeatsAvailable
	}

	status := model.StatusPendingPayment
	payment := model.PaymentPending
	if quote.FeeCents == 0 {
		status = model.StatusPendingApproval
		payment = model.PaymentNotRequired
	}

	var m *model.Membership
	for attempt := 0; attempt < seatRetryBudget; attempt++ {
		max, err := a.Memberships.MaxSeatSequenceTx(ctx, tx, bucketKey, 0)
		if err != nil {
			return nil, err
		}
		candidate := &model.Membership{
			UserID:        userID,
			CellID:        s.CellID,
			DesignationID: s.DesignationID,
			Level:         s.Level,
			Zone:          s.Zone,
			CountryID:     s.CountryID,
			StateID:       s.StateID,
			DistrictID:    s.DistrictID,
			MandalID:      s.MandalID,
			BucketKey:     bucketKey,
			SeatSequence:  max + 1,
			Status:        status,
			PaymentStatus: payment,
			FeeCents:      quote.FeeCents,
			Currency:      quote.Currency,
			ValidityDays:  quote.ValidityDays,
		}
		err = a.Memberships.CreateTx(ctx, tx, candidate)
		if err == nil {
			m = candidate
			break
		}
		if !errors.Is(err, repository.ErrConcurrentModification) {
			return nil, err
		}
		// A competitor committed between our count and the insert
		// (empty buckets lock no rows, so the first count cannot see
		// it).  Its row is visible to locking reads now; re-check
		// capacity before drawing the next ordinal.
		occupied, err = a.Memberships.CountOccupiedTx(ctx, tx, bucketKey, 0)
		if err != nil {
			return nil, err
		}
		if occupied >= capacity {
			return nil, repository.ErrNoSeatsAvailable
		}
	}
	if m == nil {
		return nil, repository.ErrConcurrentModification
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return m, nil
}

// inTx runs fn inside a transaction with a rollback guard, shared by
// services that need a short transaction around repository calls.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
