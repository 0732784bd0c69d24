package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
)

func u64(v uint64) *uint64           { return &v }
func u32(v uint32) *uint32           { return &v }
func lvl(l model.Level) *model.Level { return &l }
func zone(z model.Zone) *model.Zone  { return &z }

func testDesignation() *model.Designation {
	return &model.Designation{
		ID:              7,
		Code:            "PRESIDENT",
		DefaultFeeCents: 50000,
		Currency:        "INR",
		ValidityDays:    365,
	}
}

func stateScope() model.Scope {
	return model.Scope{
		CellID:        1,
		DesignationID: 7,
		Level:         model.LevelState,
		StateID:       10,
	}
}

func TestResolveQuote_NoOverridesUsesDefaults(t *testing.T) {
	q := ResolveQuote(testDesignation(), stateScope(), nil)
	assert.Equal(t, uint32(50000), q.FeeCents)
	assert.Equal(t, "INR", q.Currency)
	assert.Equal(t, uint32(365), q.ValidityDays)
	assert.Zero(t, q.OverrideID)
}

func TestResolveQuote_MostSpecificWins(t *testing.T) {
	overrides := []model.PriceOverride{
		{ID: 1, FeeCents: 10000, Currency: "INR", Level: lvl(model.LevelState)},
		{ID: 2, FeeCents: 20000, Currency: "INR", Level: lvl(model.LevelState), StateID: u64(10)},
		{ID: 3, FeeCents: 30000, Currency: "INR", CellID: u64(99)}, // wrong cell, scores 0
	}
	q := ResolveQuote(testDesignation(), stateScope(), overrides)
	assert.Equal(t, uint64(2), q.OverrideID)
	assert.Equal(t, uint32(20000), q.FeeCents)
}

func TestResolveQuote_CellOutweighsLevelAndGeo(t *testing.T) {
	// Cell carries weight 8; level (4) + state (2) together reach 6.
	overrides := []model.PriceOverride{
		{ID: 1, FeeCents: 111, Currency: "INR", Level: lvl(model.LevelState), StateID: u64(10)},
		{ID: 2, FeeCents: 222, Currency: "INR", CellID: u64(1)},
	}
	q := ResolveQuote(testDesignation(), stateScope(), overrides)
	assert.Equal(t, uint64(2), q.OverrideID)
}

func TestResolveQuote_MandalOutweighsCoarserGeo(t *testing.T) {
	s := model.Scope{
		CellID:        1,
		DesignationID: 7,
		Level:         model.LevelMandal,
		StateID:       10,
		DistrictID:    20,
		MandalID:      30,
	}
	overrides := []model.PriceOverride{
		{ID: 1, FeeCents: 111, Currency: "INR", StateID: u64(10)},   // weight 2
		{ID: 2, FeeCents: 222, Currency: "INR", MandalID: u64(30)},  // weight 3
	}
	q := ResolveQuote(testDesignation(), s, overrides)
	assert.Equal(t, uint64(2), q.OverrideID)
}

func TestResolveQuote_ConflictingFieldsScoreLowButStayCandidates(t *testing.T) {
	// The only override names a different state: score 0, but with no
	// competitor it still wins over the designation defaults.
	overrides := []model.PriceOverride{
		{ID: 1, FeeCents: 999, Currency: "INR", StateID: u64(555)},
	}
	q := ResolveQuote(testDesignation(), stateScope(), overrides)
	assert.Equal(t, uint64(1), q.OverrideID)
	assert.Equal(t, uint32(999), q.FeeCents)
}

func TestResolveQuote_TieBreaksOnPriorityThenRecency(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	overrides := []model.PriceOverride{
		{ID: 1, FeeCents: 111, Currency: "INR", StateID: u64(10), Priority: 5, CreatedAt: base},
		{ID: 2, FeeCents: 222, Currency: "INR", StateID: u64(10), Priority: 9, CreatedAt: base},
		{ID: 3, FeeCents: 333, Currency: "INR", StateID: u64(10), Priority: 9, CreatedAt: base.Add(time.Hour)},
	}
	q := ResolveQuote(testDesignation(), stateScope(), overrides)
	assert.Equal(t, uint64(3), q.OverrideID)

	// Order of the slice must not matter.
	reversed := []model.PriceOverride{overrides[2], overrides[1], overrides[0]}
	assert.Equal(t, q, ResolveQuote(testDesignation(), stateScope(), reversed))
}

func TestResolveQuote_ZeroFeeOverrideIsValid(t *testing.T) {
	overrides := []model.PriceOverride{
		{ID: 1, FeeCents: 0, Currency: "INR", Level: lvl(model.LevelState), StateID: u64(10)},
	}
	q := ResolveQuote(testDesignation(), stateScope(), overrides)
	assert.Equal(t, uint64(1), q.OverrideID)
	assert.Zero(t, q.FeeCents)
}

func TestResolveQuote_ValidityOverride(t *testing.T) {
	overrides := []model.PriceOverride{
		{ID: 1, FeeCents: 100, Currency: "INR", StateID: u64(10), ValidityDays: u32(90)},
	}
	q := ResolveQuote(testDesignation(), stateScope(), overrides)
	assert.Equal(t, uint32(90), q.ValidityDays)

	// nil ValidityDays keeps the designation default.
	overrides[0].ValidityDays = nil
	q = ResolveQuote(testDesignation(), stateScope(), overrides)
	assert.Equal(t, uint32(365), q.ValidityDays)
}

func TestMatchScore_Weights(t *testing.T) {
	s := model.Scope{
		CellID:        1,
		DesignationID: 7,
		Level:         model.LevelMandal,
		StateID:       10,
		DistrictID:    20,
		MandalID:      30,
	}
	full := model.PriceOverride{
		CellID:     u64(1),
		Level:      lvl(model.LevelMandal),
		StateID:    u64(10),
		DistrictID: u64(20),
		MandalID:   u64(30),
	}
	assert.Equal(t, 8+4+2+2+3, matchScore(full, s))

	zoneScope := model.Scope{CellID: 1, DesignationID: 7, Level: model.LevelZone, Zone: model.ZoneSouth}
	zoneOverride := model.PriceOverride{Zone: zone(model.ZoneSouth)}
	assert.Equal(t, 2, matchScore(zoneOverride, zoneScope))

	// Populated but mismatching fields contribute nothing.
	miss := model.PriceOverride{CellID: u64(2), StateID: u64(11), MandalID: u64(31)}
	assert.Zero(t, matchScore(miss, s))
}
