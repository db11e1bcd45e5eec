package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-offer-backend/internal/domain"
)

func TestOfferHistory_ThreadOrderAndScope(t *testing.T) {
	db := newTestDB(t)
	seedListing(t, db, "l1", "u2")
	offers := newSvc(t, db)
	audit := NewAuditService(db)
	ctx := context.Background()

	o, _ := offers.CreateOffer(ctx, "u1", "l1", 100, domain.OfferTerms{}, "")
	if _, err := offers.RespondToOffer(ctx, "u2", o.ID, domain.ActionReject, "too low"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	items, total, err := audit.OfferHistory(ctx, "u1", o.ID, 1, 10)
	if err != nil || total != 2 || len(items) != 2 {
		t.Fatalf("thread read: total=%d len=%d err=%v", total, len(items), err)
	}
	if items[0].ActionType != domain.ActionCreated || items[1].ActionType != domain.ActionRejected {
		t.Fatalf("thread must read oldest first: %#v", items)
	}

	// The other party can read too; outsiders cannot.
	if _, _, err := audit.OfferHistory(ctx, "u2", o.ID, 1, 10); err != nil {
		t.Fatalf("seller read: %v", err)
	}
	if _, _, err := audit.OfferHistory(ctx, "u3", o.ID, 1, 10); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider read: got %v", err)
	}
	if _, _, err := audit.OfferHistory(ctx, "u1", "missing", 1, 10); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("missing offer: got %v", err)
	}
}

func TestOfferHistory_Pagination(t *testing.T) {
	db := newTestDB(t)
	seedListing(t, db, "l1", "u2")
	offers := newSvc(t, db)
	audit := NewAuditService(db)
	ctx := context.Background()

	o, _ := offers.CreateOffer(ctx, "u1", "l1", 100, domain.OfferTerms{}, "")
	if _, err := offers.RespondToOffer(ctx, "u2", o.ID, domain.ActionAccept, ""); err != nil {
		t.Fatalf("accept: %v", err)
	}

	items, total, err := audit.OfferHistory(ctx, "u1", o.ID, 2, 1)
	if err != nil || total != 2 || len(items) != 1 {
		t.Fatalf("page 2: total=%d len=%d err=%v", total, len(items), err)
	}
	if items[0].ActionType != domain.ActionAccepted {
		t.Fatalf("second page should hold the newer event: %#v", items)
	}
}

func TestActorFeed_NewestFirstAndSelfScoped(t *testing.T) {
	db := newTestDB(t)
	seedListing(t, db, "l1", "u2")
	seedListing(t, db, "l2", "u3")
	offers := newSvc(t, db)
	audit := NewAuditService(db)
	ctx := context.Background()

	a, _ := offers.CreateOffer(ctx, "u1", "l1", 100, domain.OfferTerms{}, "")
	if _, err := offers.CreateOffer(ctx, "u1", "l2", 100, domain.OfferTerms{}, ""); err != nil {
		t.Fatalf("second offer: %v", err)
	}
	if _, err := offers.RespondToOffer(ctx, "u2", a.ID, domain.ActionReject, ""); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// u1 sees only their own two created events, not u2's rejection.
	items, total, err := audit.ActorFeed(ctx, "u1", 1, 10)
	if err != nil || total != 2 || len(items) != 2 {
		t.Fatalf("feed: total=%d len=%d err=%v", total, len(items), err)
	}
	for _, h := range items {
		if h.ActionBy != "u1" {
			t.Fatalf("feed leaked another actor's event: %#v", h)
		}
	}
	if items[0].CreatedAt.Before(items[1].CreatedAt) {
		t.Fatalf("feed must read newest first: %#v", items)
	}

	// Empty feed for an unknown actor.
	items, total, err = audit.ActorFeed(ctx, "nobody", 1, 10)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("empty feed: total=%d len=%d err=%v", total, len(items), err)
	}
}
