// Package repo implements the data persistence layer for the negotiation
// engine, backed by GORM. This file provides repository functions for the
// Listing read model.
//
// The catalog service owns listings; the negotiation engine only consults
// them for sellability checks and flips the sold flag when an offer is
// accepted. Both writes here are conditional on the listing still being
// active, mirroring the offer transition primitive.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-offer-backend/internal/domain"
)

// GetListing fetches a listing by ID. If the record does not exist, it
// returns ErrNotFound. On other DB errors, the raw error is returned.
func GetListing(ctx context.Context, db *gorm.DB, id string) (*domain.Listing, error) {
	var l domain.Listing
	if err := db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// MarkListingSold transitions an active listing to sold, recording the
// sale price and time. It returns (false, nil) when the listing was
// missing or no longer active; the caller treats that as a reconciliation
// concern, not a failure of the accepted offer.
func MarkListingSold(ctx context.Context, db *gorm.DB, id string, price float64) (bool, error) {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND status = ?", id, domain.ListingActive).
		Updates(map[string]any{
			"status":     domain.ListingSold,
			"sold_price": price,
			"sold_at":    now,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
