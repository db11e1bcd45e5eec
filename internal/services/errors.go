// Package services defines the business logic of the offer negotiation
// engine. This file centralizes service-level error values so that they can
// be consistently returned by service methods and checked by callers.
//
// The sentinels fall into five expected-outcome classes that the handler
// layer maps to HTTP results: validation (caller input), not-found,
// forbidden (actor lacks the role), invalid-state (action not legal for
// the offer's current status), and conflict (lost a race to a concurrent
// transition). Anything else bubbling out of a service is an internal
// storage failure and must never drive business decisions.
//
// Several sentinels are returned wrapped with the observed current status
// (e.g. "offer is not pending: current status countered") so callers can
// both branch with errors.Is and show an actionable message.
package services

import "errors"

// Validation errors (caller's fault, never retried automatically).
var (
	// ErrInvalidAmount is returned when an offer amount is zero or negative.
	ErrInvalidAmount = errors.New("offer amount must be positive")

	// ErrInvalidAction is returned when a respond action is not one of
	// accept, reject, or withdraw.
	ErrInvalidAction = errors.New("action must be accept, reject, or withdraw")

	// ErrInvalidRole is returned when a list filter names a role other
	// than buyer, seller, or all.
	ErrInvalidRole = errors.New("role must be buyer, seller, or all")

	// ErrInvalidStatus is returned when a list filter names a status
	// outside the enumerated set.
	ErrInvalidStatus = errors.New("unknown offer status")

	// ErrMessageTooLong is returned when an offer message exceeds the
	// configured rune limit.
	ErrMessageTooLong = errors.New("message too long")
)

// Not-found errors.
var (
	// ErrOfferNotFound indicates that the requested offer does not exist.
	ErrOfferNotFound = errors.New("offer not found")

	// ErrListingNotFound indicates that the referenced listing does not exist.
	ErrListingNotFound = errors.New("listing not found")
)

// Forbidden errors (actor lacks the role for the action).
var (
	// ErrNotBuyer is returned when a buyer-only action (withdraw) is
	// attempted by anyone other than the offer's buyer.
	ErrNotBuyer = errors.New("only the buyer may perform this action")

	// ErrNotSeller is returned when a seller-only action (accept, reject)
	// is attempted by anyone other than the offer's seller.
	ErrNotSeller = errors.New("only the seller may perform this action")

	// ErrNotParticipant is returned when an actor who is neither buyer nor
	// seller touches an offer or its history.
	ErrNotParticipant = errors.New("not a participant in this offer")
)

// Invalid-state errors (action not legal for the current status).
var (
	// ErrNotPending is returned when a transition is attempted on an offer
	// that has already reached a terminal status. It is wrapped with the
	// current status.
	ErrNotPending = errors.New("offer is not pending")

	// ErrOfferExpired is returned when a pending offer's deadline has
	// passed; the offer is lazily transitioned to expired on the way out.
	ErrOfferExpired = errors.New("offer has expired")

	// ErrListingNotActive is returned when the listing is not open for
	// offers (sold or inactive).
	ErrListingNotActive = errors.New("listing is not active")

	// ErrOwnListing is returned when a buyer offers on their own listing.
	ErrOwnListing = errors.New("cannot make an offer on your own listing")
)

// Conflict errors (lost a race to a concurrent transition).
var (
	// ErrDuplicatePending is returned when the buyer already has a pending
	// offer on the listing.
	ErrDuplicatePending = errors.New("a pending offer already exists for this listing")

	// ErrLostRace is returned when the conditional status update affected
	// zero rows because a concurrent transition won. It is wrapped with
	// the status observed after the race.
	ErrLostRace = errors.New("offer was modified concurrently")
)
