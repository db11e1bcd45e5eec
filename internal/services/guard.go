// Authorization guard for offer transitions.
//
// The guard is pure: it inspects only the actor identity and the already
// loaded offer, never storage. Role rules: withdraw is buyer-only, accept
// and reject are seller-only, counter is open to either party.
package services

import (
	"github.com/tbourn/go-offer-backend/internal/domain"
)

// IsParticipant reports whether actorID is a party to the offer.
func IsParticipant(actorID string, o *domain.Offer) bool {
	return actorID == o.BuyerID || actorID == o.SellerID
}

// CanRespond decides whether actorID may apply the requested respond
// action to the offer. It returns nil when allowed, ErrInvalidAction for
// an unknown action, and a forbidden-class sentinel otherwise. Outsiders
// are always rejected with ErrNotParticipant rather than leaking which
// role the action would have required.
func CanRespond(actorID string, o *domain.Offer, action domain.RespondAction) error {
	if !IsParticipant(actorID, o) {
		return ErrNotParticipant
	}
	switch action {
	case domain.ActionWithdraw:
		if actorID != o.BuyerID {
			return ErrNotBuyer
		}
	case domain.ActionAccept, domain.ActionReject:
		if actorID != o.SellerID {
			return ErrNotSeller
		}
	default:
		return ErrInvalidAction
	}
	return nil
}

// CanCounter decides whether actorID may counter the offer. Either party
// may counter; anyone else is rejected with ErrNotParticipant.
func CanCounter(actorID string, o *domain.Offer) error {
	if !IsParticipant(actorID, o) {
		return ErrNotParticipant
	}
	return nil
}
