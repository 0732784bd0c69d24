// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to translate distinct failure scenarios into distinct HTTP
// responses and stable error codes. For example, ErrNoSeatsAvailable
// surfaces a full bucket to the caller without retrying, while
// ErrConcurrentModification marks a transient conflict that is safe to
// retry as a whole transaction.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as revoking an already-expired membership or
// reassigning a seat that is mid-reassignment. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDesignationNotFound is returned when a designation code or ID
// does not resolve to a catalog entry.
var ErrDesignationNotFound = errors.New("designation not found")

// ErrCycleDetected is returned by SetParent when the requested parent
// is a descendant of the designation being reparented.
var ErrCycleDetected = errors.New("designation cycle detected")

// ErrMembershipNotFound is returned when a membership ID does not
// resolve to a row.
var ErrMembershipNotFound = errors.New("membership not found")

// ErrNoSeatsAvailable is returned when a bucket has reached its
// effective capacity. It is a caller-facing terminal outcome, not a
// transient error.
var ErrNoSeatsAvailable = errors.New("no seats available")

// ErrInvalidScope is returned when a scope's populated geographic
// fields do not match its level.
var ErrInvalidScope = errors.New("invalid scope")

// ErrConcurrentModification is returned when an optimistic version
// check fails or a seat-sequence retry budget is exhausted. The whole
// allocation or reassignment transaction is safe to retry.
var ErrConcurrentModification = errors.New("concurrent modification")

// ErrCardNumberTaken is returned when inserting an ID card collides
// with an existing card number. The numbering service retries
// internally by drawing the next counter value; callers never see it.
var ErrCardNumberTaken = errors.New("card number already exists")

// ErrCardSpaceExhausted is returned when an epoch's numbering counter
// moves past the 5-digit space a card number carries. Issuance fails
// rather than mint a malformed number.
var ErrCardSpaceExhausted = errors.New("card number space exhausted")

// ErrCardNotFound is returned when a membership has no generated card.
var ErrCardNotFound = errors.New("card not found")

// IsDuplicateEntry reports whether err is a MySQL duplicate-key
// violation (error 1062). Allocation and card numbering lean on this
// to drive their optimistic retry loops off the uniqueness
// constraints.
func IsDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
