// Audit-trail detail payloads.
package services

import (
	"encoding/json"

	"github.com/tbourn/go-offer-backend/internal/domain"
)

// historyDetails is the structured payload serialized into
// OfferHistory.ActionDetails. Fields are omitted when empty so each event
// records only what actually happened.
type historyDetails struct {
	OfferAmount       float64            `json:"offer_amount,omitempty"`
	Terms             *domain.OfferTerms `json:"terms,omitempty"`
	Message           string             `json:"message,omitempty"`
	OldStatus         domain.OfferStatus `json:"old_status,omitempty"`
	NewStatus         domain.OfferStatus `json:"new_status,omitempty"`
	RejectionReason   string             `json:"rejection_reason,omitempty"`
	CounterOfferID    string             `json:"counter_offer_id,omitempty"`
	OriginalOfferID   string             `json:"original_offer_id,omitempty"`
	CounterOfferCount int                `json:"counter_offer_count,omitempty"`
}

// encode renders the payload as JSON. Marshalling a struct of scalars
// cannot fail, but the fallback keeps the column valid JSON regardless.
func (d historyDetails) encode() string {
	b, err := json.Marshal(d)
	if err != nil {
		return "{}"
	}
	return string(b)
}
