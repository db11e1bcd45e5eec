// Package services – AuditService
//
// This file implements the read side of the append-only audit trail. Two
// access patterns exist: the full transition thread of one offer (ordered
// oldest first, restricted to the offer's parties) and a user's own
// activity feed across offers (newest first, self-scoped by construction).
// Writes happen inline in OfferService and the sweeper; this service never
// mutates history.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-offer-backend/internal/domain"
	"github.com/tbourn/go-offer-backend/internal/repo"
)

// AuditService exposes paginated reads over the offer audit trail.
type AuditService struct {
	// DB is the GORM handle used for all history reads.
	DB *gorm.DB
}

// NewAuditService constructs an AuditService.
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

// OfferHistory returns a page of offerID's transition thread in the order
// the events happened. Only the offer's buyer or seller may read it;
// outsiders get ErrNotParticipant, a missing offer gets ErrOfferNotFound.
func (s *AuditService) OfferHistory(ctx context.Context, actorID, offerID string, page, pageSize int) ([]domain.OfferHistory, int64, error) {
	o, err := repo.GetOffer(ctx, s.DB, offerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, 0, ErrOfferNotFound
		}
		return nil, 0, err
	}
	if !IsParticipant(actorID, o) {
		return nil, 0, ErrNotParticipant
	}

	pageSize, offset := normalizePage(page, pageSize)

	total, err := repo.CountOfferHistory(ctx, s.DB, offerID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.OfferHistory{}, 0, nil
	}

	items, err := repo.ListOfferHistoryPage(ctx, s.DB, offerID, offset, pageSize)
	return items, total, err
}

// ActorFeed returns a page of actorID's own audit entries across all
// offers, most recent first. The scope is the acting user; there is no
// cross-user read.
func (s *AuditService) ActorFeed(ctx context.Context, actorID string, page, pageSize int) ([]domain.OfferHistory, int64, error) {
	pageSize, offset := normalizePage(page, pageSize)

	total, err := repo.CountActorHistory(ctx, s.DB, actorID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.OfferHistory{}, 0, nil
	}

	items, err := repo.ListActorHistoryPage(ctx, s.DB, actorID, offset, pageSize)
	return items, total, err
}

// normalizePage applies the shared pagination defaults and computes the
// row offset.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}
