package model

import (
	"fmt"
	"strings"
)

// Level identifies the tier of the organizational hierarchy at which a
// seat is held.  Levels form a fixed five-step ladder from the national
// body down to individual mandals.
type Level string

const (
	LevelNational Level = "NATIONAL"
	LevelZone     Level = "ZONE"
	LevelState    Level = "STATE"
	LevelDistrict Level = "DISTRICT"
	LevelMandal   Level = "MANDAL"
)

// Valid reports whether l is one of the five known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelNational, LevelZone, LevelState, LevelDistrict, LevelMandal:
		return true
	}
	return false
}

// Zone is a coarse geographic grouping of states.  A state carries
// exactly one zone tag out of this fixed set.
type Zone string

const (
	ZoneNorth     Zone = "NORTH"
	ZoneSouth     Zone = "SOUTH"
	ZoneEast      Zone = "EAST"
	ZoneWest      Zone = "WEST"
	ZoneCentral   Zone = "CENTRAL"
	ZoneNorthEast Zone = "NORTH_EAST"
)

// Valid reports whether z is one of the known zone tags.
func (z Zone) Valid() bool {
	switch z {
	case ZoneNorth, ZoneSouth, ZoneEast, ZoneWest, ZoneCentral, ZoneNorthEast:
		return true
	}
	return false
}

// Scope addresses a bucket: the unit over which seat capacity and seat
// ordinals are tracked.  It combines an organizational cell, a
// designation, a hierarchy level and the geographic fields relevant to
// that level.  Zero values mean "not populated"; Validate enforces
// which fields must and must not be set for each level.
//
// Populated geo fields per level:
//
//	NATIONAL – country
//	ZONE     – zone
//	STATE    – state
//	DISTRICT – state, district
//	MANDAL   – state, district, mandal
type Scope struct {
	CellID        uint64 `json:"cell_id"`
	DesignationID uint64 `json:"designation_id"`
	Level         Level  `json:"level"`
	Zone          Zone   `json:"zone,omitempty"`
	CountryID     uint64 `json:"country_id,omitempty"`
	StateID       uint64 `json:"state_id,omitempty"`
	DistrictID    uint64 `json:"district_id,omitempty"`
	MandalID      uint64 `json:"mandal_id,omitempty"`
}

// Validate checks that exactly the geographic fields relevant to the
// scope's level are populated.  A scope carrying extra fields (e.g. a
// MANDAL scope with a zone or country) is rejected just like one with
// missing fields, so that two requests addressing the same bucket can
// never produce different bucket keys.
func (s Scope) Validate() error {
	if s.CellID == 0 {
		return fmt.Errorf("scope: cell is required")
	}
	if s.DesignationID == 0 {
		return fmt.Errorf("scope: designation is required")
	}
	if !s.Level.Valid() {
		return fmt.Errorf("scope: unknown level %q", s.Level)
	}
	type req struct {
		name string
		set  bool
		want bool
	}
	var checks []req
	switch s.Level {
	case LevelNational:
		checks = []req{
			{"country", s.CountryID != 0, true},
			{"zone", s.Zone != "", false},
			{"state", s.StateID != 0, false},
			{"district", s.DistrictID != 0, false},
			{"mandal", s.MandalID != 0, false},
		}
	case LevelZone:
		checks = []req{
			{"zone", s.Zone != "", true},
			{"country", s.CountryID != 0, false},
			{"state", s.StateID != 0, false},
			{"district", s.DistrictID != 0, false},
			{"mandal", s.MandalID != 0, false},
		}
	case LevelState:
		checks = []req{
			{"state", s.StateID != 0, true},
			{"country", s.CountryID != 0, false},
			{"zone", s.Zone != "", false},
			{"district", s.DistrictID != 0, false},
			{"mandal", s.MandalID != 0, false},
		}
	case LevelDistrict:
		checks = []req{
			{"state", s.StateID != 0, true},
			{"district", s.DistrictID != 0, true},
			{"country", s.CountryID != 0, false},
			{"zone", s.Zone != "", false},
			{"mandal", s.MandalID != 0, false},
		}
	case LevelMandal:
		checks = []req{
			{"state", s.StateID != 0, true},
			{"district", s.DistrictID != 0, true},
			{"mandal", s.MandalID != 0, true},
			{"country", s.CountryID != 0, false},
			{"zone", s.Zone != "", false},
		}
	}
	for _, c := range checks {
		if c.want && !c.set {
			return fmt.Errorf("scope: %s is required at level %s", c.name, s.Level)
		}
		if !c.want && c.set {
			return fmt.Errorf("scope: %s must not be set at level %s", c.name, s.Level)
		}
	}
	if s.Zone != "" && !s.Zone.Valid() {
		return fmt.Errorf("scope: unknown zone %q", s.Zone)
	}
	return nil
}

// BucketKey returns the canonical string encoding of the scope tuple.
// Memberships store this key and a uniqueness constraint on
// (bucket_key, seat_sequence) backs concurrent allocation, so the
// encoding must be stable: same tuple, same string, forever.
func (s Scope) BucketKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "c%d:d%d:%s", s.CellID, s.DesignationID, s.Level)
	if s.Zone != "" {
		fmt.Fprintf(&b, ":z%s", s.Zone)
	}
	if s.CountryID != 0 {
		fmt.Fprintf(&b, ":co%d", s.CountryID)
	}
	if s.StateID != 0 {
		fmt.Fprintf(&b, ":st%d", s.StateID)
	}
	if s.DistrictID != 0 {
		fmt.Fprintf(&b, ":di%d", s.DistrictID)
	}
	if s.MandalID != 0 {
		fmt.Fprintf(&b, ":ma%d", s.MandalID)
	}
	return b.String()
}
