// Status enum and transition table for the offer state machine.
//
// Pending is the sole non-terminal status: every transition originates
// there, and no transition leaves a terminal status. Repos and services
// must consult CanTransition rather than comparing strings ad hoc so the
// diagram lives in exactly one place.
package domain

// OfferStatus is the closed set of offer lifecycle states.
type OfferStatus string

const (
	StatusPending   OfferStatus = "pending"
	StatusAccepted  OfferStatus = "accepted"
	StatusRejected  OfferStatus = "rejected"
	StatusWithdrawn OfferStatus = "withdrawn"
	StatusCountered OfferStatus = "countered"
	StatusExpired   OfferStatus = "expired"
)

// AllStatuses lists every enumerated status, for validation and tests.
var AllStatuses = []OfferStatus{
	StatusPending,
	StatusAccepted,
	StatusRejected,
	StatusWithdrawn,
	StatusCountered,
	StatusExpired,
}

// validNext is the exhaustive transition table. Terminal statuses map to
// an empty set rather than being absent, so iteration covers all six.
var validNext = map[OfferStatus]map[OfferStatus]bool{
	StatusPending: {
		StatusAccepted:  true,
		StatusRejected:  true,
		StatusWithdrawn: true,
		StatusCountered: true,
		StatusExpired:   true,
	},
	StatusAccepted:  {},
	StatusRejected:  {},
	StatusWithdrawn: {},
	StatusCountered: {},
	StatusExpired:   {},
}

// CanTransition reports whether the state machine permits moving an offer
// from one status to another.
func CanTransition(from, to OfferStatus) bool {
	return validNext[from][to]
}

// IsTerminal reports whether no further transition may leave the status.
func (s OfferStatus) IsTerminal() bool {
	return len(validNext[s]) == 0
}

// Valid reports whether the status is one of the six enumerated values.
func (s OfferStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// ActionType labels an audit-trail event.
type ActionType string

const (
	ActionCreated   ActionType = "created"
	ActionCountered ActionType = "countered"
	ActionAccepted  ActionType = "accepted"
	ActionRejected  ActionType = "rejected"
	ActionWithdrawn ActionType = "withdrawn"
	ActionExpired   ActionType = "expired"
)

// RespondAction is a user-requested terminal transition on a pending offer.
type RespondAction string

const (
	ActionAccept   RespondAction = "accept"
	ActionReject   RespondAction = "reject"
	ActionWithdraw RespondAction = "withdraw"
)

// TargetStatus returns the terminal status a respond action drives the
// offer to, and false for an unknown action.
func (a RespondAction) TargetStatus() (OfferStatus, bool) {
	switch a {
	case ActionAccept:
		return StatusAccepted, true
	case ActionReject:
		return StatusRejected, true
	case ActionWithdraw:
		return StatusWithdrawn, true
	default:
		return "", false
	}
}

// HistoryAction returns the audit-trail label for the respond action.
func (a RespondAction) HistoryAction() ActionType {
	switch a {
	case ActionAccept:
		return ActionAccepted
	case ActionReject:
		return ActionRejected
	default:
		return ActionWithdrawn
	}
}
