// Package domain defines the persistence models for offers, offer history,
// and the engine's read model of catalog listings. These types are mapped
// with GORM and form the core data layer of the negotiation engine.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// OfferTerms captures the negotiable conditions attached to an offer.
// Terms are write-once at creation; a counter-offer carries its own terms.
type OfferTerms struct {
	CashOffer             bool `json:"cash_offer"`
	FinancingNeeded       bool `json:"financing_needed"`
	InspectionContingency bool `json:"inspection_contingency"`
}

// Offer represents one node of a buyer/seller negotiation thread on a
// listing. The buyer and seller identities, the amount, and the terms are
// immutable once created; only Status (plus its matching timestamp and
// UpdatedAt) may change afterwards, and only through the conditional-update
// primitive in the repo package.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - ListingID: the negotiated listing; combined with BuyerID and Status
//     in an index backing the one-pending-offer-per-buyer rule.
//   - BuyerID / SellerID: the proposing and receiving parties.
//   - OfferAmount: positive monetary value proposed by the buyer.
//   - Status: one of the six enumerated statuses (see status.go).
//   - Terms: embedded negotiation terms.
//   - Message: optional free text accompanying the proposal.
//   - OriginalOfferID: back-reference to the offer this one supersedes;
//     nil for a fresh offer. Counter chains point strictly backward.
//   - CounterOfferCount: depth in the counter chain (0 for a fresh offer).
//   - ExpiresAt: deadline after which a pending offer must expire; indexed
//     together with Status for the sweeper's scan.
//   - AcceptedAt / RejectedAt / ExpiredAt: set exactly once, only on the
//     matching terminal transition. Mutually exclusive.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Offer struct {
	ID                string     `json:"id"                  gorm:"type:char(36);primaryKey"`
	ListingID         string     `json:"listing_id"          gorm:"type:char(36);not null;index:idx_listing_buyer_status,priority:1"`
	BuyerID           string     `json:"buyer_id"            gorm:"type:varchar(64);not null;index:idx_listing_buyer_status,priority:2"`
	SellerID          string     `json:"seller_id"           gorm:"type:varchar(64);not null;index"`
	OfferAmount       float64    `json:"offer_amount"        gorm:"not null"`
	Status            OfferStatus `json:"status"             gorm:"type:varchar(16);not null;index:idx_listing_buyer_status,priority:3;index:idx_status_expires,priority:1;check:status IN ('pending','accepted','rejected','withdrawn','countered','expired')"`
	Terms             OfferTerms `json:"terms"               gorm:"embedded;embeddedPrefix:term_"`
	Message           string     `json:"message,omitempty"   gorm:"type:text"`
	OriginalOfferID   *string    `json:"original_offer_id,omitempty" gorm:"type:char(36);index"`
	CounterOfferCount int        `json:"counter_offer_count" gorm:"not null;default:0"`
	ExpiresAt         time.Time  `json:"expires_at"          gorm:"not null;index:idx_status_expires,priority:2"`
	AcceptedAt        *time.Time `json:"accepted_at,omitempty"`
	RejectedAt        *time.Time `json:"rejected_at,omitempty"`
	ExpiredAt         *time.Time `json:"expired_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Offer.
func (Offer) TableName() string { return "offers" }

// OfferHistory is the append-only audit record of a creation or transition
// event on an offer. Rows are never updated or deleted; history is advisory
// rather than authoritative (the Offer row is the source of truth).
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - OfferID: the offer the event belongs to (indexed for thread reads).
//   - ActionType: created|countered|accepted|rejected|withdrawn|expired.
//   - ActionBy: actor identifier, or "system" for sweeper transitions.
//   - ActionDetails: JSON document with amounts, terms, counter linkage,
//     old/new status, and the rejection reason when present.
//   - CreatedAt: event time; thread reads order on it ascending.
type OfferHistory struct {
	ID            string     `json:"id"             gorm:"type:char(36);primaryKey"`
	OfferID       string     `json:"offer_id"       gorm:"type:char(36);not null;index:idx_history_offer,priority:1"`
	ActionType    ActionType `json:"action_type"    gorm:"type:varchar(16);not null;check:action_type IN ('created','countered','accepted','rejected','withdrawn','expired')"`
	ActionBy      string     `json:"action_by"      gorm:"type:varchar(64);not null;index:idx_history_actor,priority:1"`
	ActionDetails string     `json:"action_details" gorm:"type:text"`
	CreatedAt     time.Time  `json:"created_at"     gorm:"index:idx_history_offer,priority:2;index:idx_history_actor,priority:2"`

	// Offer is the parent negotiation node. History rows are
	// cascade-deleted only if the offer itself is ever removed.
	Offer Offer `json:"-" gorm:"foreignKey:OfferID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for OfferHistory.
func (OfferHistory) TableName() string { return "offer_history" }

// Listing is the engine's local read model of a catalog listing. The
// catalog owns this data; the negotiation engine only reads it to decide
// whether a listing is sellable and flips it to sold when an offer is
// accepted.
type Listing struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	OwnerID   string         `json:"owner_id"   gorm:"type:varchar(64);not null;index"`
	Title     string         `json:"title"      gorm:"type:varchar(255);not null"`
	Price     float64        `json:"price"      gorm:"not null"`
	Status    string         `json:"status"     gorm:"type:varchar(16);not null;default:'active';check:status IN ('active','sold','inactive')"`
	SoldPrice *float64       `json:"sold_price,omitempty"`
	SoldAt    *time.Time     `json:"sold_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Listing.
func (Listing) TableName() string { return "listings" }

// Listing status values. Only an active listing can receive offers.
const (
	ListingActive   = "active"
	ListingSold     = "sold"
	ListingInactive = "inactive"
)

// SystemActor is recorded as ActionBy for transitions the engine performs
// on its own, i.e. expirations applied by the sweeper or lazily on read.
const SystemActor = "system"
