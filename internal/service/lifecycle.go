package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
)

// paymentAction is the decision the state machine takes for an
// incoming payment result.  Separating the decision from the side
// effects keeps the transition table testable without a database.
type paymentAction int

const (
	actionActivate paymentAction = iota
	actionMarkFailed
	actionNoop     // already resolved; absorb duplicate callbacks
	actionConflict // state does not accept payment results
)

// decidePayment maps (membership status, payment outcome) to an
// action.  Duplicate gateway callbacks land on an ACTIVE membership
// and are absorbed as no-ops; terminal memberships likewise never
// error on late confirmations.
func decidePayment(status model.MembershipStatus, success bool) paymentAction {
	switch status {
	case model.StatusPendingPayment:
		if success {
			return actionActivate
		}
		return actionMarkFailed
	case model.StatusActive, model.StatusExpired, model.StatusRevoked:
		return actionNoop
	case model.StatusPendingApproval:
		// No payment is expected on a free seat.
		return actionConflict
	}
	return actionConflict
}

// activationWindow computes the validity window opened by an
// activation: [now, now + validityDays).
func activationWindow(now time.Time, validityDays uint32) (time.Time, time.Time) {
	start := now.UTC()
	return start, start.Add(time.Duration(validityDays) * 24 * time.Hour)
}

// Lifecycle drives membership state transitions.  Activation, card
// issuance and the status update commit in one transaction; the
// activation event is published after commit and failures there are
// logged, never propagated.
type Lifecycle struct {
	Memberships *repository.MembershipRepo
	Users       *repository.UserRepo
	Designation *repository.DesignationRepo
	Cells       *repository.CellRepo
	Issuer      *CardIssuer
	Publisher   ActivationPublisher
}

// ActivationPublisher receives the post-commit notification for an
// activated membership.  The queue package provides the RabbitMQ
// implementation; tests may pass nil to skip publishing.
type ActivationPublisher interface {
	PublishActivated(ctx context.Context, m *model.Membership, card *model.IDCard)
}

// NewLifecycle constructs a Lifecycle.
func NewLifecycle(m *repository.MembershipRepo, u *repository.UserRepo, d *repository.DesignationRepo,
	c *repository.CellRepo, issuer *CardIssuer, pub ActivationPublisher) *Lifecycle {
	if m == nil || u == nil || d == nil || c == nil || issuer == nil {
		panic("nil dependency passed to NewLifecycle")
	}
	return &Lifecycle{Memberships: m, Users: u, Designation: d, Cells: c, Issuer: issuer, Publisher: pub}
}

// ConfirmPayment applies a payment result from the gateway
// collaborator.  It is safe to call any number of times with the same
// provider reference: once the membership has left PENDING_PAYMENT the
// call is a no-op returning the current state, which absorbs duplicate
// webhook deliveries.  A successful result activates the membership
// and mints its card in the same transaction.
func (lc *Lifecycle) ConfirmPayment(ctx context.Context, membershipID uint64, providerRef string, success bool) (*model.Membership, error) {
	var out *model.Membership
	var card *model.IDCard
	err := inTx(ctx, lc.Memberships.DB(), func(tx *sql.Tx) error {
		m, err := lc.Memberships.GetByIDForUpdateTx(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		var ref *string
		if providerRef != "" {
			ref = &providerRef
		}
		switch decidePayment(m.Status, success) {
		case actionNoop:
			out = m
			return nil
		case actionConflict:
			return repository.ErrConflict
		case actionMarkFailed:
			if err := lc.Memberships.SetPaymentFailedTx(ctx, tx, m.ID, m.Version, ref); err != nil {
				return err
			}
		case actionActivate:
			c, err := lc.activateTx(ctx, tx, m, model.PaymentSuccess, ref)
			if err != nil {
				return err
			}
			card = c
		}
		out, err = refetchTx(ctx, tx, lc.Memberships, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if card != nil {
		lc.publish(ctx, out, card)
	}
	return out, nil
}

// Approve activates a PENDING_APPROVAL membership (no payment
// involved).  Calling it on an already ACTIVE membership is a no-op.
func (lc *Lifecycle) Approve(ctx context.Context, membershipID uint64) (*model.Membership, error) {
	var out *model.Membership
	var card *model.IDCard
	err := inTx(ctx, lc.Memberships.DB(), func(tx *sql.Tx) error {
		m, err := lc.Memberships.GetByIDForUpdateTx(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		switch m.Status {
		case model.StatusActive:
			out = m
			return nil
		case model.StatusPendingApproval:
			c, err := lc.activateTx(ctx, tx, m, model.PaymentNotRequired, nil)
			if err != nil {
				return err
			}
			card = c
		default:
			return repository.ErrConflict
		}
		out, err = refetchTx(ctx, tx, lc.Memberships, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if card != nil {
		lc.publish(ctx, out, card)
	}
	return out, nil
}

// activateTx performs the shared activation side effects inside the
// caller's transaction: status flip, validity window, card issuance.
func (lc *Lifecycle) activateTx(ctx context.Context, tx *sql.Tx, m *model.Membership,
	payment model.PaymentStatus, providerRef *string) (*model.IDCard, error) {
	activatedAt, expiresAt := activationWindow(time.Now(), m.ValidityDays)
	if err := lc.Memberships.ActivateTx(ctx, tx, m.ID, m.Version, payment, providerRef, activatedAt, expiresAt); err != nil {
		return nil, err
	}
	return lc.Issuer.IssueTx(ctx, tx, m.ID, activatedAt, expiresAt)
}

// Revoke moves a non-terminal membership to REVOKED and revokes its
// card in the same transaction.  Revoking an already revoked
// membership is a no-op; revoking an expired one is a conflict.
func (lc *Lifecycle) Revoke(ctx context.Context, membershipID uint64) (*model.Membership, error) {
	var out *model.Membership
	err := inTx(ctx, lc.Memberships.DB(), func(tx *sql.Tx) error {
		m, err := lc.Memberships.GetByIDForUpdateTx(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		switch m.Status {
		case model.StatusRevoked:
			out = m
			return nil
		case model.StatusExpired:
			return repository.ErrConflict
		}
		if err := lc.Memberships.RevokeTx(ctx, tx, m.ID, m.Version); err != nil {
			return err
		}
		if err := lc.Issuer.Cards.RevokeActiveByMembershipTx(ctx, tx, m.ID); err != nil {
			return err
		}
		out, err = refetchTx(ctx, tx, lc.Memberships, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpireDue is the scheduled sweep: every ACTIVE membership past its
// expiry flips to EXPIRED.  Returns the number of memberships swept.
func (lc *Lifecycle) ExpireDue(ctx context.Context) (int64, error) {
	return lc.Memberships.ExpireDue(ctx)
}

// publish pushes the activation event to the broker.  Event delivery
// is best-effort; the membership is already committed.
func (lc *Lifecycle) publish(ctx context.Context, m *model.Membership, card *model.IDCard) {
	if lc.Publisher == nil {
		return
	}
	lc.Publisher.PublishActivated(ctx, m, card)
}

// refetchTx re-reads a membership inside the transaction after an
// update so callers return the committed state, not a stale copy.
func refetchTx(ctx context.Context, tx *sql.Tx, repo *repository.MembershipRepo, id uint64) (*model.Membership, error) {
	m, err := repo.GetByIDForUpdateTx(ctx, tx, id)
	if err != nil {
		log.Printf("lifecycle: refetch membership %d failed: %v", id, err)
	}
	return m, err
}
