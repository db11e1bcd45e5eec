// Package services – OfferService
//
// This file implements the OfferService, which manages the lifecycle of a
// purchase offer between a buyer and a seller: creation, counter-offers,
// accept/reject/withdraw responses, and the party-scoped reads. It
// orchestrates validation, the authorization guard, the repo layer's
// conditional-update primitive, and audit-trail logging.
//
// Every status change funnels through repo.TransitionStatus, so a user
// action and the expiration sweeper racing on the same offer produce
// exactly one winner; the loser observes "zero rows affected" and surfaces
// ErrLostRace (or ErrOfferExpired for the lazy-expiration path). Service
// sentinels are returned for predictable cases so handlers can map them to
// HTTP results consistently.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-offer-backend/internal/domain"
	"github.com/tbourn/go-offer-backend/internal/repo"
)

// DefaultOfferTTL is the expiration horizon applied to new offers when the
// service is constructed without an explicit TTL.
const DefaultOfferTTL = 72 * time.Hour

// OfferService implements the negotiation use-cases. It is safe for
// concurrent use; all cross-request coordination happens in the database
// through conditional updates, never in process memory.
type OfferService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// OfferTTL is the expiration horizon for newly created offers.
	OfferTTL time.Duration
	// MaxMessageRunes caps offer messages by rune length (0 = no cap).
	MaxMessageRunes int
	// Logger reports best-effort side-effect failures (history writes,
	// listing sold flag) that must not fail the primary operation.
	Logger zerolog.Logger

	// Now is a clock seam for tests; nil means time.Now.
	Now func() time.Time
}

// NewOfferService constructs an OfferService with default TTL and limits.
func NewOfferService(db *gorm.DB, logger zerolog.Logger) *OfferService {
	return &OfferService{
		DB:              db,
		OfferTTL:        DefaultOfferTTL,
		MaxMessageRunes: 2000,
		Logger:          logger,
	}
}

func (s *OfferService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateOffer opens a new negotiation thread: buyerID proposes amount for
// listingID under the given terms.
//
// Semantics and validation:
//   - amount must be positive; otherwise ErrInvalidAmount.
//   - message is capped at MaxMessageRunes; otherwise ErrMessageTooLong.
//   - The listing must exist (ErrListingNotFound), be active
//     (ErrListingNotActive), and not belong to the buyer (ErrOwnListing).
//   - A buyer holds at most one pending offer per listing; a second
//     attempt fails with ErrDuplicatePending.
//
// The offer row and its "created" audit entry are written in one
// transaction, so a cancelled request leaves no partial state.
func (s *OfferService) CreateOffer(ctx context.Context, buyerID, listingID string, amount float64, terms domain.OfferTerms, message string) (*domain.Offer, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(message) > s.MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	var created *domain.Offer
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := repo.GetListing(ctx, tx, listingID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrListingNotFound
			}
			return err
		}
		if listing.Status != domain.ListingActive {
			return fmt.Errorf("%w: listing is %s", ErrListingNotActive, listing.Status)
		}
		if listing.OwnerID == buyerID {
			return ErrOwnListing
		}

		dup, err := repo.HasPendingOffer(ctx, tx, listingID, buyerID)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicatePending
		}

		now := s.now()
		created, err = repo.CreateOffer(ctx, tx, &domain.Offer{
			ListingID:   listingID,
			BuyerID:     buyerID,
			SellerID:    listing.OwnerID,
			OfferAmount: amount,
			Status:      domain.StatusPending,
			Terms:       terms,
			Message:     message,
			ExpiresAt:   now.Add(s.OfferTTL),
		})
		if err != nil {
			return err
		}

		_, err = repo.AppendHistory(ctx, tx, created.ID, domain.ActionCreated, buyerID, historyDetails{
			OfferAmount: amount,
			Terms:       &terms,
			Message:     message,
			NewStatus:   domain.StatusPending,
		}.encode())
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateCounterOffer retires a pending offer and spawns its successor in
// the negotiation thread.
//
// Role reversal: the new offer swaps buyer and seller relative to the
// original: the actor takes the opposite role from the one they held and
// the counter-party takes the remaining one. Countering an offer you
// received makes you the proposing party of the new offer.
//
// The original's pending -> countered transition is the linearization
// point: it runs as a conditional update inside the same transaction that
// creates the successor and both audit rows, so a reader can never resolve
// the new offer without also seeing the original retired. A lost race
// (offer accepted, withdrawn, or expired first) surfaces as ErrLostRace
// wrapped with the status that won.
func (s *OfferService) CreateCounterOffer(ctx context.Context, actorID, originalID string, amount float64, terms domain.OfferTerms, message string) (*domain.Offer, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(message) > s.MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	original, err := repo.GetOffer(ctx, s.DB, originalID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	if err := CanCounter(actorID, original); err != nil {
		return nil, err
	}
	if err := s.expireIfDue(ctx, original); err != nil {
		return nil, err
	}
	if original.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: current status %s", ErrNotPending, original.Status)
	}

	var counter *domain.Offer
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := repo.TransitionStatus(ctx, tx, original.ID, domain.StatusPending, domain.StatusCountered)
		if err != nil {
			return err
		}
		if !ok {
			return s.lostRace(ctx, tx, original.ID)
		}

		now := s.now()
		counter, err = repo.CreateOffer(ctx, tx, &domain.Offer{
			ListingID:         original.ListingID,
			BuyerID:           original.SellerID,
			SellerID:          original.BuyerID,
			OfferAmount:       amount,
			Status:            domain.StatusPending,
			Terms:             terms,
			Message:           message,
			OriginalOfferID:   &original.ID,
			CounterOfferCount: original.CounterOfferCount + 1,
			ExpiresAt:         now.Add(s.OfferTTL),
		})
		if err != nil {
			return err
		}

		// Original side: retired, linking forward to its successor.
		if _, err := repo.AppendHistory(ctx, tx, original.ID, domain.ActionCountered, actorID, historyDetails{
			OldStatus:      domain.StatusPending,
			NewStatus:      domain.StatusCountered,
			CounterOfferID: counter.ID,
		}.encode()); err != nil {
			return err
		}
		// New side: born pending, linking back.
		_, err = repo.AppendHistory(ctx, tx, counter.ID, domain.ActionCountered, actorID, historyDetails{
			OfferAmount:       amount,
			Terms:             &terms,
			Message:           message,
			NewStatus:         domain.StatusPending,
			OriginalOfferID:   original.ID,
			CounterOfferCount: counter.CounterOfferCount,
		}.encode())
		return err
	})
	if err != nil {
		return nil, err
	}
	return counter, nil
}

// RespondToOffer applies a terminal user action (accept, reject, withdraw)
// to a pending offer on behalf of actorID.
//
// Ordering of checks follows the state machine: existence, lazy
// expiration, pending status, authorization, then the conditional
// transition. An offer found past its deadline is expired on the spot
// (through the same primitive the sweeper uses) and the call fails with
// ErrOfferExpired, keeping reads consistent between sweep cycles.
//
// On accept, the listing is marked sold at the offer amount as a
// best-effort side effect: the acceptance has already committed and is
// never rolled back if the listing write fails; the failure is logged for
// out-of-band reconciliation. The audit row is likewise advisory; a failed
// history write is logged, not reverted.
func (s *OfferService) RespondToOffer(ctx context.Context, actorID, offerID string, action domain.RespondAction, rejectionReason string) (*domain.Offer, error) {
	target, ok := action.TargetStatus()
	if !ok {
		return nil, ErrInvalidAction
	}

	o, err := repo.GetOffer(ctx, s.DB, offerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	if err := s.expireIfDue(ctx, o); err != nil {
		return nil, err
	}
	if o.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: current status %s", ErrNotPending, o.Status)
	}
	if err := CanRespond(actorID, o, action); err != nil {
		return nil, err
	}

	won, err := repo.TransitionStatus(ctx, s.DB, o.ID, domain.StatusPending, target)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, s.lostRace(ctx, s.DB, o.ID)
	}

	// The transition is committed; everything below is best-effort.
	if action == domain.ActionAccept {
		sold, err := repo.MarkListingSold(ctx, s.DB, o.ListingID, o.OfferAmount)
		if err != nil || !sold {
			s.Logger.Error().
				Err(err).
				Bool("listing_updated", sold).
				Str("offer_id", o.ID).
				Str("listing_id", o.ListingID).
				Msg("accepted offer: failed to mark listing sold, needs reconciliation")
		}
	}

	if _, err := repo.AppendHistory(ctx, s.DB, o.ID, action.HistoryAction(), actorID, historyDetails{
		OldStatus:       domain.StatusPending,
		NewStatus:       target,
		RejectionReason: rejectionReason,
	}.encode()); err != nil {
		s.Logger.Error().
			Err(err).
			Str("offer_id", o.ID).
			Str("action", string(action)).
			Msg("history write failed after committed transition")
	}

	updated, err := repo.GetOffer(ctx, s.DB, o.ID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetOffer returns a single offer, restricted to its two parties.
func (s *OfferService) GetOffer(ctx context.Context, actorID, offerID string) (*domain.Offer, error) {
	o, err := repo.GetOffer(ctx, s.DB, offerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	if !IsParticipant(actorID, o) {
		return nil, ErrNotParticipant
	}
	return o, nil
}

// ListOffers returns a page of offers involving actorID, newest first.
// role narrows to the side of the negotiation: "buyer", "seller", or
// "all"/"" for both. status optionally narrows to one lifecycle status.
func (s *OfferService) ListOffers(ctx context.Context, actorID, role string, status domain.OfferStatus, page, pageSize int) ([]domain.Offer, int64, error) {
	var f repo.OfferFilter
	switch role {
	case "buyer":
		f.BuyerID = actorID
	case "seller":
		f.SellerID = actorID
	case "all", "":
		f.BuyerID = actorID
		f.SellerID = actorID
	default:
		return nil, 0, ErrInvalidRole
	}
	if status != "" {
		if !status.Valid() {
			return nil, 0, ErrInvalidStatus
		}
		f.Status = status
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountOffers(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Offer{}, 0, nil
	}

	items, err := repo.ListOffersPage(ctx, s.DB, f, offset, pageSize)
	return items, total, err
}

// expireIfDue applies lazy expiration: a pending offer whose deadline has
// passed is transitioned to expired through the sweeper's conditional
// primitive, an audit row is appended for the system actor, and
// ErrOfferExpired is returned. Losing the conditional update here is
// fine: somebody else (sweeper or another request) already expired it, and the
// caller still sees ErrOfferExpired.
func (s *OfferService) expireIfDue(ctx context.Context, o *domain.Offer) error {
	if o.Status != domain.StatusPending || !s.now().After(o.ExpiresAt) {
		return nil
	}

	won, err := repo.TransitionStatus(ctx, s.DB, o.ID, domain.StatusPending, domain.StatusExpired)
	if err != nil {
		return err
	}
	if won {
		if _, err := repo.AppendHistory(ctx, s.DB, o.ID, domain.ActionExpired, domain.SystemActor, historyDetails{
			OldStatus: domain.StatusPending,
			NewStatus: domain.StatusExpired,
		}.encode()); err != nil {
			s.Logger.Error().
				Err(err).
				Str("offer_id", o.ID).
				Msg("history write failed after lazy expiration")
		}
	}
	return ErrOfferExpired
}

// lostRace reloads the offer after a conditional update affected zero rows
// and reports the status that won, so the caller can act on it.
func (s *OfferService) lostRace(ctx context.Context, db *gorm.DB, offerID string) error {
	current, err := repo.GetOffer(ctx, db, offerID)
	if err != nil {
		return fmt.Errorf("%w: current status unknown", ErrLostRace)
	}
	return fmt.Errorf("%w: current status %s", ErrLostRace, current.Status)
}
