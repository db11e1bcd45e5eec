// Package repo implements the data persistence layer for the negotiation
// engine, backed by GORM. This file provides repository functions for the
// Offer model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Concurrency model:
//
// The offer Status column is mutated exclusively through TransitionStatus,
// a conditional update ("SET status = X WHERE id = ? AND status = ?") that
// reports whether exactly one row changed. Request handlers and the
// expiration sweeper both funnel through it, so a lost race surfaces as
// "no rows affected" instead of a silent double transition. No other code
// path may write Status.
//
// Error semantics:
//   - When an offer is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-offer-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// OfferFilter narrows ListOffersPage/CountOffers to one side of the
// negotiation and/or one status. Zero values mean "no filter".
type OfferFilter struct {
	// BuyerID restricts to offers where the actor is the proposing party.
	BuyerID string
	// SellerID restricts to offers where the actor is the receiving party.
	SellerID string
	// Status restricts to a single lifecycle status.
	Status domain.OfferStatus
}

// CreateOffer inserts a new Offer row with a generated UUID and UTC
// creation time. All fields besides ID/CreatedAt/UpdatedAt must already be
// populated by the caller; the row is persisted exactly as given.
//
// On success, it returns the persisted Offer. On failure, a DB error.
func CreateOffer(ctx context.Context, db *gorm.DB, o *domain.Offer) (*domain.Offer, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if err := db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

// GetOffer fetches a single offer by ID. If the record does not exist, it
// returns ErrNotFound. On other DB errors, the raw error is returned.
func GetOffer(ctx context.Context, db *gorm.DB, id string) (*domain.Offer, error) {
	var o domain.Offer
	if err := db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// HasPendingOffer reports whether buyerID already has a pending offer on
// listingID. Backed by the (listing_id, buyer_id, status) index.
func HasPendingOffer(ctx context.Context, db *gorm.DB, listingID, buyerID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Offer{}).
		Where("listing_id = ? AND buyer_id = ? AND status = ?", listingID, buyerID, domain.StatusPending).
		Count(&n).Error
	return n > 0, err
}

// TransitionStatus performs the conditional status update that backs every
// transition in the state machine:
//
//	UPDATE offers SET status = to, <stamp> = now, updated_at = now
//	WHERE id = ? AND status = from
//
// It returns (true, nil) when exactly one row changed, and (false, nil)
// when the offer was missing or had already left the expected status;
// the caller decides whether that is NotFound or a lost race. The matching
// terminal timestamp (accepted_at / rejected_at / expired_at) is stamped
// in the same statement so it can never diverge from the status.
func TransitionStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.OfferStatus) (bool, error) {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":     to,
		"updated_at": now,
	}
	switch to {
	case domain.StatusAccepted:
		updates["accepted_at"] = now
	case domain.StatusRejected:
		updates["rejected_at"] = now
	case domain.StatusExpired:
		updates["expired_at"] = now
	}

	res := db.WithContext(ctx).
		Model(&domain.Offer{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FindExpired returns up to limit pending offers whose deadline has passed
// as of now, oldest deadline first. Backed by the (status, expires_at)
// index; the sweeper calls this in bounded batches.
func FindExpired(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.Offer, error) {
	var out []domain.Offer
	err := db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", domain.StatusPending, now).
		Order("expires_at asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountOffers returns the total number of offers matching the filter for
// actorID. The role filter decides which side(s) of the negotiation count.
func CountOffers(ctx context.Context, db *gorm.DB, f OfferFilter) (int64, error) {
	var total int64
	err := applyOfferFilter(db.WithContext(ctx).Model(&domain.Offer{}), f).Count(&total).Error
	return total, err
}

// ListOffersPage returns a paginated slice of offers matching the filter,
// ordered by creation time descending. Use CountOffers to obtain the total
// for pagination metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListOffersPage(ctx context.Context, db *gorm.DB, f OfferFilter, offset, limit int) ([]domain.Offer, error) {
	var out []domain.Offer
	err := applyOfferFilter(db.WithContext(ctx), f).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// applyOfferFilter composes the WHERE clauses for the list/count pair.
// Setting both BuyerID and SellerID matches either side (OR), which is how
// "all offers involving this actor" is expressed.
func applyOfferFilter(q *gorm.DB, f OfferFilter) *gorm.DB {
	switch {
	case f.BuyerID != "" && f.SellerID != "":
		q = q.Where("buyer_id = ? OR seller_id = ?", f.BuyerID, f.SellerID)
	case f.BuyerID != "":
		q = q.Where("buyer_id = ?", f.BuyerID)
	case f.SellerID != "":
		q = q.Where("seller_id = ?", f.SellerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}
