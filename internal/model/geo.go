package model

import "time"

// Country is the root of the geographic tree.  Names are unique.
type Country struct {
	ID        uint64    // countries.id
	Name      string    // countries.name
	CreatedAt time.Time // countries.created_at
}

// State belongs to a country and carries a zone tag.  State names are
// unique within their country.  Geographic rows are immutable once
// referenced by memberships except for administrative corrections.
type State struct {
	ID        uint64    // states.id
	CountryID uint64    // states.country_id
	Name      string    // states.name
	Zone      Zone      // states.zone
	CreatedAt time.Time // states.created_at
}

// District belongs to a state; names unique within the state.
type District struct {
	ID        uint64    // districts.id
	StateID   uint64    // districts.state_id
	Name      string    // districts.name
	CreatedAt time.Time // districts.created_at
}

// Mandal belongs to a district; names unique within the district.
type Mandal struct {
	ID         uint64    // mandals.id
	DistrictID uint64    // mandals.district_id
	Name       string    // mandals.name
	CreatedAt  time.Time // mandals.created_at
}
