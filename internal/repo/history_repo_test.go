package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-offer-backend/internal/domain"
)

func TestAppendHistory_Success(t *testing.T) {
	db := newRepoDB(t, &domain.Offer{}, &domain.OfferHistory{})
	o := seedOffer(t, db, domain.Offer{ID: "o1", ListingID: "l1", BuyerID: "u1", SellerID: "u2", OfferAmount: 1})

	h, err := AppendHistory(context.Background(), db, o.ID, domain.ActionCreated, "u1", `{"offer_amount":15000}`)
	if err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if h.ID == "" || h.OfferID != o.ID || h.ActionType != domain.ActionCreated || h.ActionBy != "u1" {
		t.Fatalf("unexpected history row: %+v", h)
	}

	var got domain.OfferHistory
	if err := db.First(&got, "id = ?", h.ID).Error; err != nil {
		t.Fatalf("round-trip: %v", err)
	}
	if got.ActionDetails != `{"offer_amount":15000}` {
		t.Fatalf("details mismatch: %q", got.ActionDetails)
	}
}

func TestListOfferHistoryPage_AscendingThreadOrder(t *testing.T) {
	db := newRepoDB(t, &domain.Offer{}, &domain.OfferHistory{})
	o := seedOffer(t, db, domain.Offer{ID: "o1", ListingID: "l1", BuyerID: "u1", SellerID: "u2", OfferAmount: 1})

	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rows := []domain.OfferHistory{
		{ID: "h2", OfferID: o.ID, ActionType: domain.ActionAccepted, ActionBy: "u2", CreatedAt: t0.Add(time.Hour)},
		{ID: "h1", OfferID: o.ID, ActionType: domain.ActionCreated, ActionBy: "u1", CreatedAt: t0},
	}
	for _, h := range rows {
		if err := db.Create(&h).Error; err != nil {
			t.Fatalf("seed %s: %v", h.ID, err)
		}
	}

	total, err := CountOfferHistory(context.Background(), db, o.ID)
	if err != nil || total != 2 {
		t.Fatalf("CountOfferHistory = %d err=%v, want 2", total, err)
	}

	list, err := ListOfferHistoryPage(context.Background(), db, o.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListOfferHistoryPage: %v", err)
	}
	if len(list) != 2 || list[0].ID != "h1" || list[1].ID != "h2" {
		t.Fatalf("thread must read oldest first: %#v", list)
	}
}

func TestListActorHistoryPage_DescendingFeedAcrossOffers(t *testing.T) {
	db := newRepoDB(t, &domain.Offer{}, &domain.OfferHistory{})
	a := seedOffer(t, db, domain.Offer{ID: "a", ListingID: "l1", BuyerID: "u1", SellerID: "u2", OfferAmount: 1})
	b := seedOffer(t, db, domain.Offer{ID: "b", ListingID: "l2", BuyerID: "u1", SellerID: "u3", OfferAmount: 1})

	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rows := []domain.OfferHistory{
		{ID: "h1", OfferID: a.ID, ActionType: domain.ActionCreated, ActionBy: "u1", CreatedAt: t0},
		{ID: "h2", OfferID: b.ID, ActionType: domain.ActionCreated, ActionBy: "u1", CreatedAt: t0.Add(time.Hour)},
		{ID: "hx", OfferID: a.ID, ActionType: domain.ActionAccepted, ActionBy: "u2", CreatedAt: t0.Add(2 * time.Hour)},
	}
	for _, h := range rows {
		if err := db.Create(&h).Error; err != nil {
			t.Fatalf("seed %s: %v", h.ID, err)
		}
	}

	total, err := CountActorHistory(context.Background(), db, "u1")
	if err != nil || total != 2 {
		t.Fatalf("CountActorHistory = %d err=%v, want 2", total, err)
	}

	list, err := ListActorHistoryPage(context.Background(), db, "u1", 0, 10)
	if err != nil {
		t.Fatalf("ListActorHistoryPage: %v", err)
	}
	if len(list) != 2 || list[0].ID != "h2" || list[1].ID != "h1" {
		t.Fatalf("feed must read newest first: %#v", list)
	}
}
