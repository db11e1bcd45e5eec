// Package repo implements the data persistence layer for the negotiation
// engine, backed by GORM. This file provides repository functions for the
// append-only OfferHistory audit trail.
//
// History rows are never updated or deleted. Two read patterns are
// supported: the full thread of one offer (time-ascending) and an actor's
// activity feed across offers (time-descending).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-offer-backend/internal/domain"
)

// AppendHistory inserts one audit row for an offer event. The details
// string is expected to be a JSON document assembled by the service layer.
//
// On success, it returns the persisted row. On failure, a DB error.
func AppendHistory(ctx context.Context, db *gorm.DB, offerID string, action domain.ActionType, actionBy, details string) (*domain.OfferHistory, error) {
	h := &domain.OfferHistory{
		ID:            uuid.NewString(),
		OfferID:       offerID,
		ActionType:    action,
		ActionBy:      actionBy,
		ActionDetails: details,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

// CountOfferHistory returns the number of audit rows for one offer.
func CountOfferHistory(ctx context.Context, db *gorm.DB, offerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.OfferHistory{}).
		Where("offer_id = ?", offerID).
		Count(&total).Error
	return total, err
}

// ListOfferHistoryPage returns a page of one offer's audit trail ordered
// by creation time ascending, so a reader walks the thread in the order
// the transitions happened.
func ListOfferHistoryPage(ctx context.Context, db *gorm.DB, offerID string, offset, limit int) ([]domain.OfferHistory, error) {
	var out []domain.OfferHistory
	err := db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountActorHistory returns the number of audit rows recorded for actorID
// across all offers.
func CountActorHistory(ctx context.Context, db *gorm.DB, actorID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.OfferHistory{}).
		Where("action_by = ?", actorID).
		Count(&total).Error
	return total, err
}

// ListActorHistoryPage returns a page of actorID's activity feed across
// offers, most recent first.
func ListActorHistoryPage(ctx context.Context, db *gorm.DB, actorID string, offset, limit int) ([]domain.OfferHistory, error) {
	var out []domain.OfferHistory
	err := db.WithContext(ctx).
		Where("action_by = ?", actorID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
