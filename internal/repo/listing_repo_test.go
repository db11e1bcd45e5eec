package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-offer-backend/internal/domain"
)

func TestGetListing_NotFound(t *testing.T) {
	db := newRepoDB(t, &domain.Listing{})
	_, err := GetListing(context.Background(), db, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetListing_Success(t *testing.T) {
	db := newRepoDB(t, &domain.Listing{})
	l := domain.Listing{ID: "l1", OwnerID: "u2", Title: "Bungalow", Price: 200000, Status: domain.ListingActive}
	if err := db.Create(&l).Error; err != nil {
		t.Fatalf("seed listing: %v", err)
	}

	got, err := GetListing(context.Background(), db, "l1")
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if got.OwnerID != "u2" || got.Status != domain.ListingActive {
		t.Fatalf("unexpected listing: %+v", got)
	}
}

func TestMarkListingSold_ActiveOnly(t *testing.T) {
	db := newRepoDB(t, &domain.Listing{})
	l := domain.Listing{ID: "l1", OwnerID: "u2", Title: "Bungalow", Price: 200000, Status: domain.ListingActive}
	if err := db.Create(&l).Error; err != nil {
		t.Fatalf("seed listing: %v", err)
	}

	ok, err := MarkListingSold(context.Background(), db, "l1", 15000)
	if err != nil || !ok {
		t.Fatalf("first sale should succeed: ok=%v err=%v", ok, err)
	}

	var got domain.Listing
	if err := db.First(&got, "id = ?", "l1").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != domain.ListingSold || got.SoldPrice == nil || *got.SoldPrice != 15000 {
		t.Fatalf("sale not recorded: %+v", got)
	}
	if got.SoldAt == nil || time.Since(*got.SoldAt) > time.Minute {
		t.Fatalf("sold_at not stamped: %v", got.SoldAt)
	}

	// Already sold: conditional update affects no rows.
	ok, err = MarkListingSold(context.Background(), db, "l1", 99999)
	if err != nil || ok {
		t.Fatalf("second sale must affect zero rows: ok=%v err=%v", ok, err)
	}
	db.First(&got, "id = ?", "l1")
	if *got.SoldPrice != 15000 {
		t.Fatalf("sold price overwritten: %v", *got.SoldPrice)
	}
}

func TestMarkListingSold_Missing(t *testing.T) {
	db := newRepoDB(t, &domain.Listing{})
	ok, err := MarkListingSold(context.Background(), db, "missing", 1)
	if err != nil || ok {
		t.Fatalf("missing listing must affect zero rows: ok=%v err=%v", ok, err)
	}
}
