// Package queue defines message payloads exchanged over the message
// broker, the publisher for membership events and the background
// consumer for asynchronous payment results.
package queue

// MembershipActivatedEvent is published when a membership activates.
// It carries enough information for downstream consumers (push
// notification, card rendering) to act without querying the primary
// database.
type MembershipActivatedEvent struct {
	EventID         string `json:"event_id"`
	MembershipID    uint64 `json:"membership_id"`
	UserID          uint64 `json:"user_id"`
	FullName        string `json:"full_name"`
	DesignationCode string `json:"designation_code"`
	DesignationName string `json:"designation_name"`
	CellName        string `json:"cell_name"`
	Level           string `json:"level"`
	BucketKey       string `json:"bucket_key"`
	SeatSequence    uint32 `json:"seat_sequence"`
	CardNumber      string `json:"card_number"`
	ActivatedAt     string `json:"activated_at"`
	ExpiresAt       string `json:"expires_at"`
}

// PaymentResultMessage is consumed from the payment.results queue.
// The gateway collaborator verifies signatures before enqueueing, so
// messages here are trusted input.  Status is SUCCESS or FAILED.
type PaymentResultMessage struct {
	MembershipID uint64 `json:"membership_id"`
	Status       string `json:"status"`
	ProviderRef  string `json:"provider_ref"`
}
