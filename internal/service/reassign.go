package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
)

// reassignLockStaleAfter is how long an advisory locked_at marker is
// honored before being treated as abandoned.
const reassignLockStaleAfter = 5 * time.Minute

// ReassignPreview reports what applying a reassignment would do,
// without mutating anything: the quote in the target bucket, the seat
// ordinal the membership would receive there, the signed price
// difference against what the member paid, and whether the target has
// room.
type ReassignPreview struct {
	TargetQuote        Quote  `json:"target_quote"`
	PricingDeltaCents  int64  `json:"pricing_delta_cents"`
	TargetSeatSequence uint32 `json:"target_seat_sequence"`
	Accepted           bool   `json:"accepted"`
}

// Reassigner moves an existing seat to a different bucket.  Preview
// and apply run the same computation; apply repeats it inside a
// transaction with the membership row locked, an advisory marker set
// and the final update guarded by the optimistic version check.
type Reassigner struct {
	Allocator *Allocator
	Issuer    *CardIssuer
	Audits    *repository.ReassignAuditRepo
}

// NewReassigner constructs a Reassigner.
func NewReassigner(a *Allocator, issuer *CardIssuer, audits *repository.ReassignAuditRepo) *Reassigner {
	if a == nil || issuer == nil || audits == nil {
		panic("nil dependency passed to NewReassigner")
	}
	return &Reassigner{Allocator: a, Issuer: issuer, Audits: audits}
}

// computeTarget resolves the quote, capacity and next ordinal for the
// target bucket, excluding the membership's own row (a reassignment
// within the same bucket must not count itself).
func (r *Reassigner) computeTarget(ctx context.Context, m *model.Membership, target model.Scope) (*ReassignPreview, error) {
	if err := r.Allocator.checkScope(ctx, target); err != nil {
		return nil, err
	}
	d, err := r.Allocator.Designation.GetByID(ctx, target.DesignationID)
	if err != nil {
		return nil, err
	}
	quote, err := r.Allocator.QuoteScope(ctx, d, target)
	if err != nil {
		return nil, err
	}
	bucketKey := target.BucketKey()
	capacity, found, err := r.Allocator.Capacities.GetForBucket(ctx, bucketKey)
	if err != nil {
		return nil, err
	}
	if !found {
		capacity = d.DefaultCapacity
	}
	occupied, err := r.Allocator.Memberships.CountOccupied(ctx, bucketKey, m.ID)
	if err != nil {
		return nil, err
	}
	max, err := r.Allocator.Memberships.MaxSeatSequence(ctx, bucketKey, m.ID)
	if err != nil {
		return nil, err
	}
	return &ReassignPreview{
		TargetQuote:        quote,
		PricingDeltaCents:  int64(quote.FeeCents) - int64(m.FeeCents),
		TargetSeatSequence: max + 1,
		Accepted:           occupied < capacity,
	}, nil
}

// Preview computes the pricing delta and target seat ordinal for a
// prospective reassignment so the caller can show the difference
// before committing.  No state changes.
func (r *Reassigner) Preview(ctx context.Context, membershipID uint64, target model.Scope) (*ReassignPreview, error) {
	m, err := r.Allocator.Memberships.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m.Status.Terminal() {
		return nil, repository.ErrConflict
	}
	return r.computeTarget(ctx, m, target)
}

// Apply moves the membership into the target bucket: new scope
// columns, new bucket key, new seat ordinal, re-resolved fee, and a
// reissued card when the membership is active.  direct bypasses the
// capacity check; it is an administrative escape hatch that is always
// recorded in the audit trail.  The actor is the user performing the
// operation.
func (r *Reassigner) Apply(ctx context.Context, membershipID uint64, target model.Scope, direct bool, actorID uint64) (*model.Membership, error) {
	var out *model.Membership
	err := inTx(ctx, r.Allocator.Memberships.DB(), func(tx *sql.Tx) error {
		m, err := r.Allocator.Memberships.GetByIDForUpdateTx(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		if m.Status.Terminal() {
			return repository.ErrConflict
		}
		if err := r.Allocator.Memberships.AcquireReassignLockTx(ctx, tx, m.ID, reassignLockStaleAfter); err != nil {
			return err
		}
		if err := r.Allocator.checkScope(ctx, target); err != nil {
			return err
		}
		d, err := r.Allocator.Designation.GetByID(ctx, target.DesignationID)
		if err != nil {
			return err
		}
		quote, err := r.Allocator.QuoteScope(ctx, d, target)
		if err != nil {
			return err
		}
		bucketKey := target.BucketKey()
		if !direct {
			capacity, found, err := r.Allocator.Capacities.GetForBucketTx(ctx, tx, bucketKey)
			if err != nil {
				return err
			}
			if !found {
				capacity = d.DefaultCapacity
			}
			occupied, err := r.Allocator.Memberships.CountOccupiedTx(ctx, tx, bucketKey, m.ID)
			if err != nil {
				return err
			}
			if occupied >= capacity {
				return repository.ErrNoSeatsAvailable
			}
		}
		max, err := r.Allocator.Memberships.MaxSeatSequenceTx(ctx, tx, bucketKey, m.ID)
		if err != nil {
			return err
		}
		if err := r.Allocator.Memberships.UpdateScopeTx(ctx, tx, m.ID, m.Version,
			target, bucketKey, max+1, quote.FeeCents, quote.Currency, quote.ValidityDays); err != nil {
			return err
		}
		if err := r.Audits.CreateTx(ctx, tx, &repository.ReassignAudit{
			Reference:    uuid.NewString(),
			MembershipID: m.ID,
			ActorID:      actorID,
			FromBucket:   m.BucketKey,
			ToBucket:     bucketKey,
			Direct:       direct,
		}); err != nil {
			return err
		}
		// An active seat keeps its validity window but gets a fresh
		// credential for the new bucket.
		if m.Status == model.StatusActive && m.ActivatedAt != nil && m.ExpiresAt != nil {
			if _, err := r.Issuer.IssueTx(ctx, tx, m.ID, time.Now(), *m.ExpiresAt); err != nil {
				return err
			}
		}
		out, err = refetchTx(ctx, tx, r.Allocator.Memberships, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
