package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMandalScope() Scope {
	return Scope{
		CellID:        1,
		DesignationID: 2,
		Level:         LevelMandal,
		StateID:       10,
		DistrictID:    20,
		MandalID:      30,
	}
}

func TestScopeValidate_PerLevelFields(t *testing.T) {
	cases := []struct {
		name  string
		scope Scope
		ok    bool
	}{
		{"national with country", Scope{CellID: 1, DesignationID: 2, Level: LevelNational, CountryID: 1}, true},
		{"national missing country", Scope{CellID: 1, DesignationID: 2, Level: LevelNational}, false},
		{"national with stray state", Scope{CellID: 1, DesignationID: 2, Level: LevelNational, CountryID: 1, StateID: 3}, false},
		{"zone with zone", Scope{CellID: 1, DesignationID: 2, Level: LevelZone, Zone: ZoneSouth}, true},
		{"zone missing zone", Scope{CellID: 1, DesignationID: 2, Level: LevelZone}, false},
		{"zone with unknown tag", Scope{CellID: 1, DesignationID: 2, Level: LevelZone, Zone: "SOUTHWEST"}, false},
		{"state with state", Scope{CellID: 1, DesignationID: 2, Level: LevelState, StateID: 10}, true},
		{"state with stray mandal", Scope{CellID: 1, DesignationID: 2, Level: LevelState, StateID: 10, MandalID: 5}, false},
		{"district needs state and district", Scope{CellID: 1, DesignationID: 2, Level: LevelDistrict, StateID: 10, DistrictID: 20}, true},
		{"district missing state", Scope{CellID: 1, DesignationID: 2, Level: LevelDistrict, DistrictID: 20}, false},
		{"mandal full chain", validMandalScope(), true},
		{"mandal with stray zone", func() Scope { s := validMandalScope(); s.Zone = ZoneSouth; return s }(), false},
		{"missing cell", Scope{DesignationID: 2, Level: LevelNational, CountryID: 1}, false},
		{"missing designation", Scope{CellID: 1, Level: LevelNational, CountryID: 1}, false},
		{"unknown level", Scope{CellID: 1, DesignationID: 2, Level: "VILLAGE"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.scope.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestScopeBucketKey_Canonical(t *testing.T) {
	s := validMandalScope()
	require.NoError(t, s.Validate())
	assert.Equal(t, "c1:d2:MANDAL:st10:di20:ma30", s.BucketKey())

	national := Scope{CellID: 4, DesignationID: 7, Level: LevelNational, CountryID: 91}
	assert.Equal(t, "c4:d7:NATIONAL:co91", national.BucketKey())

	zone := Scope{CellID: 4, DesignationID: 7, Level: LevelZone, Zone: ZoneNorthEast}
	assert.Equal(t, "c4:d7:ZONE:zNORTH_EAST", zone.BucketKey())
}

func TestScopeBucketKey_SameTupleSameKey(t *testing.T) {
	a := validMandalScope()
	b := validMandalScope()
	assert.Equal(t, a.BucketKey(), b.BucketKey())

	b.MandalID = 31
	assert.NotEqual(t, a.BucketKey(), b.BucketKey())
}

func TestMembershipScopeRoundTrip(t *testing.T) {
	s := validMandalScope()
	m := Membership{
		CellID:        s.CellID,
		DesignationID: s.DesignationID,
		Level:         s.Level,
		Zone:          s.Zone,
		CountryID:     s.CountryID,
		StateID:       s.StateID,
		DistrictID:    s.DistrictID,
		MandalID:      s.MandalID,
	}
	assert.Equal(t, s, m.Scope())
	assert.Equal(t, s.BucketKey(), m.Scope().BucketKey())
}
