package model

import "time"

// CardStatus enumerates the states of an issued ID card.
type CardStatus string

const (
	CardGenerated CardStatus = "GENERATED"
	CardRevoked   CardStatus = "REVOKED"
)

// IDCard is the credential issued for an active membership.  At most
// one GENERATED card exists per membership at a time; renewal and
// reassignment revoke the old card and mint a new number for the same
// membership.  CardNumber is globally unique and pattern-constrained
// (HRCI-YYYY-NNNNN).
type IDCard struct {
	ID           uint64     // id_cards.id
	MembershipID uint64     // id_cards.membership_id
	CardNumber   string     // id_cards.card_number
	Status       CardStatus // id_cards.status
	IssuedAt     time.Time  // id_cards.issued_at
	ExpiresAt    time.Time  // id_cards.expires_at
	CreatedAt    time.Time  // id_cards.created_at
}
