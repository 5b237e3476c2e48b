package models_test

import (
	"testing"
	"time"

	"github.com/rahat-dev/sharebite/backend/internal/models"
)

func TestDecodeDonation_CategoryComesFromStore(t *testing.T) {
	// The document claims a different category than the collection it was
	// scanned from; the collection wins.
	rec := models.DecodeDonation(models.CategoryFood, "x1", map[string]any{
		"category": "Clothing",
		"donorId":  "d1",
	})
	if rec.Category != models.CategoryFood {
		t.Fatalf("category label must come from the collection, got %q", rec.Category)
	}
}

func TestDecodeDonation_ItemsAndDriftedNumberTypes(t *testing.T) {
	rec := models.DecodeDonation(models.CategoryFood, "x1", map[string]any{
		"donorId": "d1",
		"items": []any{
			map[string]any{"id": "rice", "name": "Rice", "quantity": int64(2), "unitPrice": 3.5},
			map[string]any{"id": "oil", "name": "Oil", "quantity": 1},
		},
	})
	if len(rec.Items) != 2 {
		t.Fatalf("want 2 items, got %d", len(rec.Items))
	}
	if rec.Items[0].Quantity != 2 || rec.Items[0].UnitPrice != 3.5 {
		t.Fatalf("item decode drifted: %+v", rec.Items[0])
	}
}

func TestDecodeDonation_MissingTimestampIsNil(t *testing.T) {
	rec := models.DecodeDonation(models.CategoryOther, "x1", map[string]any{"donorId": "d1"})
	if rec.CreatedAt != nil {
		t.Fatalf("missing createdAt should decode as nil, got %v", rec.CreatedAt)
	}

	at := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	rec = models.DecodeDonation(models.CategoryOther, "x2", map[string]any{"createdAt": at})
	if rec.CreatedAt == nil || !rec.CreatedAt.Equal(at) {
		t.Fatalf("createdAt lost: %v", rec.CreatedAt)
	}
}

func TestDonationToDocument_MutuallyExclusivePayload(t *testing.T) {
	monetary := &models.DonationRecord{Category: models.CategoryMonetary, DonorID: "d1", Amount: 50}
	doc := monetary.ToDocument()
	if _, hasItems := doc["items"]; hasItems {
		t.Fatal("monetary document must not carry items")
	}
	if doc["amount"] != 50.0 {
		t.Fatalf("amount lost: %v", doc["amount"])
	}

	food := &models.DonationRecord{
		Category: models.CategoryFood,
		DonorID:  "d1",
		Items:    []models.DonationItem{{ID: "rice", Name: "Rice", Quantity: 2}},
	}
	doc = food.ToDocument()
	if _, hasAmount := doc["amount"]; hasAmount {
		t.Fatal("item document must not carry an amount")
	}
	if doc["category"] != "Food" {
		t.Fatalf("canonical category field not written: %v", doc["category"])
	}
}
