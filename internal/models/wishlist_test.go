package models_test

import (
	"testing"
	"time"

	"github.com/rahat-dev/sharebite/backend/internal/models"
)

func TestParseStatus_UnknownFallsBackToPending(t *testing.T) {
	cases := []struct {
		raw   string
		want  models.RequestStatus
		known bool
	}{
		{"pending", models.StatusPending, true},
		{"fulfilled", models.StatusFulfilled, true},
		{"rejected", models.StatusPending, false},
		{"", models.StatusPending, false},
		{"Fulfilled", models.StatusPending, false},
	}
	for _, tc := range cases {
		got, known := models.ParseStatus(tc.raw)
		if got != tc.want || known != tc.known {
			t.Errorf("ParseStatus(%q) = (%v, %v), want (%v, %v)", tc.raw, got, known, tc.want, tc.known)
		}
	}
}

func TestDecodeWishlist_LegacyCategoryCapitalization(t *testing.T) {
	req, _ := models.DecodeWishlist("r1", map[string]any{
		"recipientId": "rec1",
		"name":        "winter coats",
		"Category":    "Clothing",
		"status":      "pending",
	})
	if req.Category != models.CategoryClothing {
		t.Fatalf("legacy Category field not read: %q", req.Category)
	}

	// The canonical lower-case field wins when both are present.
	req, _ = models.DecodeWishlist("r2", map[string]any{
		"category": "Food",
		"Category": "Clothing",
		"status":   "pending",
	})
	if req.Category != models.CategoryFood {
		t.Fatalf("canonical category field should win: %q", req.Category)
	}
}

func TestDecodeWishlist_FulfilledFields(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	req, known := models.DecodeWishlist("r1", map[string]any{
		"recipientId": "rec1",
		"status":      "fulfilled",
		"donorId":     "d9",
		"fulfilledAt": at,
	})
	if !known {
		t.Fatal("fulfilled should be a known status")
	}
	if req.Status != models.StatusFulfilled || req.DonorID != "d9" {
		t.Fatalf("fulfillment fields lost: %+v", req)
	}
	if req.FulfilledAt == nil || !req.FulfilledAt.Equal(at) {
		t.Fatalf("fulfilledAt mismatched: %v", req.FulfilledAt)
	}
}
