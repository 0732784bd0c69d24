package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
)

// cardPrefix and the number layout are fixed: HRCI, a 4-digit epoch
// (the calendar year of issue) and a 5-digit zero-padded counter
// scoped to that epoch.
const cardPrefix = "HRCI"

// cardNumberRe validates fully-formed card numbers.
var cardNumberRe = regexp.MustCompile(`^HRCI-\d{4}-\d{5}$`)

// cardNumberSQLPattern is the same constraint in MySQL REGEXP syntax,
// used by the backfill to find legacy rows.
const cardNumberSQLPattern = `^HRCI-[0-9]{4}-[0-9]{5}$`

// maxCardSeq is the largest counter value a 5-digit card number can
// carry; the counter row keeps advancing past it, so issuance must
// refuse anything above rather than let %05d widen the number.
const maxCardSeq = 99999

// numberRetryBudget bounds how many counter values an issue draws
// before giving up.  Collisions only happen when legacy data already
// holds a number ahead of the counter, so a short budget suffices.
const numberRetryBudget = 5

// FormatCardNumber renders a card number from an epoch and counter
// value.
func FormatCardNumber(epoch, seq uint32) string {
	return fmt.Sprintf("%s-%04d-%05d", cardPrefix, epoch, seq)
}

// ValidCardNumber reports whether s is a well-formed card number.
func ValidCardNumber(s string) bool { return cardNumberRe.MatchString(s) }

// EpochOf returns the numbering epoch a moment belongs to: its UTC
// calendar year.
func EpochOf(t time.Time) uint32 { return uint32(t.UTC().Year()) }

// CardIssuer mints globally unique card numbers bound 1:1 to active
// memberships.  Counter acquisition is a single atomic statement per
// draw, and the uniqueness constraint on card_number catches anything
// the counter cannot see (legacy imports); on collision the issuer
// simply draws again.
type CardIssuer struct {
	Cards *repository.IDCardRepo
	DB    *sql.DB
}

// NewCardIssuer constructs a CardIssuer.
func NewCardIssuer(db *sql.DB, cards *repository.IDCardRepo) *CardIssuer {
	if db == nil || cards == nil {
		panic("nil dependency passed to NewCardIssuer")
	}
	return &CardIssuer{Cards: cards, DB: db}
}

// IssueTx mints a card for a membership inside the caller's
// transaction, so activation and credential issuance commit together.
// Any previously generated card for the membership is revoked first
// (renewal and reassignment reissue rather than mutate).
func (ci *CardIssuer) IssueTx(ctx context.Context, tx *sql.Tx, membershipID uint64, issuedAt, expiresAt time.Time) (*model.IDCard, error) {
	if err := ci.Cards.RevokeActiveByMembershipTx(ctx, tx, membershipID); err != nil {
		return nil, err
	}
	epoch := EpochOf(issuedAt)
	for attempt := 0; attempt < numberRetryBudget; attempt++ {
		seq, err := ci.Cards.NextSequenceTx(ctx, tx, epoch)
		if err != nil {
			return nil, err
		}
		if seq > maxCardSeq {
			return nil, repository.ErrCardSpaceExhausted
		}
		card := &model.IDCard{
			MembershipID: membershipID,
			CardNumber:   FormatCardNumber(epoch, seq),
			Status:       model.CardGenerated,
			IssuedAt:     issuedAt.UTC(),
			ExpiresAt:    expiresAt.UTC(),
		}
		err = ci.Cards.CreateTx(ctx, tx, card)
		if err == nil {
			return card, nil
		}
		if !errors.Is(err, repository.ErrCardNumberTaken) {
			return nil, err
		}
		// Number already in circulation (legacy import ahead of the
		// counter); draw the next value.
	}
	return nil, repository.ErrConcurrentModification
}

// Issue mints a card for a membership in its own transaction,
// revoking any previous card first.  Used by the administrative
// reissue endpoint; activation issues through IssueTx inside the
// activation transaction instead.
func (ci *CardIssuer) Issue(ctx context.Context, membershipID uint64, issuedAt, expiresAt time.Time) (*model.IDCard, error) {
	var card *model.IDCard
	err := inTx(ctx, ci.DB, func(tx *sql.Tx) error {
		c, err := ci.IssueTx(ctx, tx, membershipID, issuedAt, expiresAt)
		if err != nil {
			return err
		}
		card = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// Backfill re-issues numbers for every card whose stored value does
// not match the canonical pattern, walking them in ascending
// original-issue order so relative order is preserved.  Original
// values are not: each card gets the next counter value of its
// original issue epoch.  Returns how many cards were renumbered.
func (ci *CardIssuer) Backfill(ctx context.Context) (int, error) {
	legacy, err := ci.Cards.ListNotMatching(ctx, cardNumberSQLPattern)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, c := range legacy {
		err := inTx(ctx, ci.DB, func(tx *sql.Tx) error {
			epoch := EpochOf(c.IssuedAt)
			for attempt := 0; attempt < numberRetryBudget; attempt++ {
				seq, err := ci.Cards.NextSequenceTx(ctx, tx, epoch)
				if err != nil {
					return err
				}
				if seq > maxCardSeq {
					return repository.ErrCardSpaceExhausted
				}
				err = ci.Cards.UpdateNumberTx(ctx, tx, c.ID, FormatCardNumber(epoch, seq))
				if err == nil {
					return nil
				}
				if !errors.Is(err, repository.ErrCardNumberTaken) {
					return err
				}
			}
			return repository.ErrConcurrentModification
		})
		if err != nil {
			// Stop at the first failure so order is preserved on the
			// next run; everything renumbered so far is committed.
			log.Printf("card-backfill: stopped at card %d: %v", c.ID, err)
			return done, err
		}
		done++
	}
	return done, nil
}
