// Package service implements the seat allocation, fee resolution,
// membership lifecycle, credential numbering and reassignment logic on
// top of the repository layer.  Repositories own the SQL; services own
// the transactions and the business rules.
package service

import (
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
)

// Specificity weights for ranking price overrides against a
// membership scope.  Cell-level overrides dominate, the hierarchy
// level comes next, and geographic locality acts as a tie-breaker.
// Mandal outweighing the coarser geo fields (3 vs 2) is deliberate
// business policy, as is zone/state/district sharing a weight.
const (
	weightCell     = 8
	weightLevel    = 4
	weightMandal   = 3
	weightZone     = 2
	weightState    = 2
	weightDistrict = 2
)

// Quote is the outcome of fee resolution for one scope: the fee and
// validity a new membership in that bucket would be charged.
// OverrideID is zero when the designation defaults applied.
type Quote struct {
	FeeCents     uint32 `json:"fee_cents"`
	Currency     string `json:"currency"`
	ValidityDays uint32 `json:"validity_days"`
	OverrideID   uint64 `json:"-"`
}

// matchScore sums the weights of every override field that is both
// populated and equal to the corresponding scope value.  Populated
// fields that conflict with the scope contribute nothing; they do not
// disqualify the override.
func matchScore(o model.PriceOverride, s model.Scope) int {
	score := 0
	if o.CellID != nil && *o.CellID == s.CellID {
		score += weightCell
	}
	if o.Level != nil && *o.Level == s.Level {
		score += weightLevel
	}
	if o.MandalID != nil && s.MandalID != 0 && *o.MandalID == s.MandalID {
		score += weightMandal
	}
	if o.Zone != nil && s.Zone != "" && *o.Zone == s.Zone {
		score += weightZone
	}
	if o.StateID != nil && s.StateID != 0 && *o.StateID == s.StateID {
		score += weightState
	}
	if o.DistrictID != nil && s.DistrictID != 0 && *o.DistrictID == s.DistrictID {
		score += weightDistrict
	}
	return score
}

// ResolveQuote picks the applicable fee and validity for a scope from
// the designation's overrides.  The highest specificity score wins;
// ties break on the override's explicit priority, then on most recent
// creation time.  A score of zero is still a valid candidate (an
// unscoped global override).  With no overrides at all the
// designation defaults apply.  Resolution is deterministic: the same
// inputs always produce the same quote.
func ResolveQuote(d *model.Designation, s model.Scope, overrides []model.PriceOverride) Quote {
	quote := Quote{
		FeeCents:     d.DefaultFeeCents,
		Currency:     d.Currency,
		ValidityDays: d.ValidityDays,
	}
	if len(overrides) == 0 {
		return quote
	}
	best := 0
	bestScore := -1
	for i, o := range overrides {
		sc := matchScore(o, s)
		if sc < bestScore {
			continue
		}
		if sc > bestScore {
			best, bestScore = i, sc
			continue
		}
		cur := overrides[best]
		if o.Priority != cur.Priority {
			if o.Priority > cur.Priority {
				best = i
			}
			continue
		}
		if o.CreatedAt.After(cur.CreatedAt) {
			best = i
		}
	}
	winner := overrides[best]
	quote.FeeCents = winner.FeeCents
	quote.Currency = winner.Currency
	quote.OverrideID = winner.ID
	if winner.ValidityDays != nil {
		quote.ValidityDays = *winner.ValidityDays
	}
	return quote
}
