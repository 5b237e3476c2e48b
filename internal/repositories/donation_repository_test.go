package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahat-dev/sharebite/backend/internal/models"
	"github.com/rahat-dev/sharebite/backend/internal/repositories"
	"github.com/rahat-dev/sharebite/backend/internal/store"
)

// failingStore wraps a DocumentStore and fails queries against the named
// collections.
type failingStore struct {
	store.DocumentStore
	broken map[string]bool
}

func (f *failingStore) Query(ctx context.Context, collection, field string, equals any) ([]store.Document, error) {
	if f.broken[collection] {
		return nil, errors.New("store unavailable")
	}
	return f.DocumentStore.Query(ctx, collection, field, equals)
}

func TestRecord_FoodDonationPersistsWithServerTimestamp(t *testing.T) {
	mem := store.NewMemoryStore()
	repo := repositories.NewStoreDonationRepository(mem, zerolog.Nop())
	ctx := context.Background()

	rec, err := repo.Record(ctx, &models.DonationRecord{
		Category: models.CategoryFood,
		DonorID:  "d1",
		Items:    []models.DonationItem{{ID: "rice", Name: "Rice", Quantity: 2}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" {
		t.Fatal("no id assigned")
	}

	doc, err := mem.Get(ctx, store.FoodCollection, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if doc == nil {
		t.Fatal("donation not persisted to the Food collection")
	}
	if doc.Data["category"] != "Food" || doc.Data["donorId"] != "d1" {
		t.Fatalf("stored fields drifted: %+v", doc.Data)
	}
	if ts, ok := doc.Data["createdAt"].(time.Time); !ok || ts.IsZero() {
		t.Fatalf("createdAt not server-assigned: %v", doc.Data["createdAt"])
	}
	items, ok := doc.Data["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("want exactly one stored item, got %v", doc.Data["items"])
	}
	if q := items[0].(map[string]any)["quantity"]; q != 2 {
		t.Fatalf("stored quantity drifted: %v", q)
	}
}

func TestRecord_ValidationRejectsBeforeAnyWrite(t *testing.T) {
	cases := []struct {
		name string
		rec  models.DonationRecord
	}{
		{"no items", models.DonationRecord{Category: models.CategoryFood, DonorID: "d1"}},
		{"zero quantities", models.DonationRecord{
			Category: models.CategoryClothing, DonorID: "d1",
			Items: []models.DonationItem{{ID: "coat", Quantity: 0}},
		}},
		{"zero amount", models.DonationRecord{Category: models.CategoryMonetary, DonorID: "d1"}},
		{"items on monetary", models.DonationRecord{
			Category: models.CategoryMonetary, DonorID: "d1", Amount: 10,
			Items: []models.DonationItem{{ID: "rice", Quantity: 1}},
		}},
		{"amount on food", models.DonationRecord{
			Category: models.CategoryFood, DonorID: "d1", Amount: 10,
			Items: []models.DonationItem{{ID: "rice", Quantity: 1}},
		}},
		{"time slot without address", models.DonationRecord{
			Category: models.CategoryOther, DonorID: "d1", TimeSlot: "10:00-12:00",
			Items: []models.DonationItem{{ID: "books", Quantity: 3}},
		}},
		{"unknown category", models.DonationRecord{Category: "Toys", DonorID: "d1"}},
		{"missing donor", models.DonationRecord{Category: models.CategoryMonetary, Amount: 5}},
	}

	mem := store.NewMemoryStore()
	repo := repositories.NewStoreDonationRepository(mem, zerolog.Nop())
	ctx := context.Background()

	for _, tc := range cases {
		rec := tc.rec
		if _, err := repo.Record(ctx, &rec); !errors.Is(err, repositories.ErrValidation) {
			t.Errorf("%s: want ErrValidation, got %v", tc.name, err)
		}
	}

	// Nothing may have reached any collection.
	for _, cat := range store.ScanOrder {
		coll, _ := store.CollectionFor(cat)
		docs, _ := mem.Query(ctx, coll, "donorId", "d1")
		if len(docs) != 0 {
			t.Fatalf("rejected donation leaked into %q", coll)
		}
	}
}

func TestScan_RoleSelectsFilterField(t *testing.T) {
	mem := store.NewMemoryStore()
	repo := repositories.NewStoreDonationRepository(mem, zerolog.Nop())
	ctx := context.Background()

	if _, err := mem.Add(ctx, store.FoodCollection, map[string]any{"donorId": "d1", "recipientId": "r1"}); err != nil {
		t.Fatal(err)
	}

	asDonor, err := repo.Scan(ctx, "d1", models.RoleDonor)
	if err != nil {
		t.Fatal(err)
	}
	if len(asDonor) != 1 {
		t.Fatalf("donor scan: want 1 record, got %d", len(asDonor))
	}

	asRecipient, err := repo.Scan(ctx, "d1", models.RoleRecipient)
	if err != nil {
		t.Fatal(err)
	}
	if len(asRecipient) != 0 {
		t.Fatalf("recipient scan must filter on recipientId, got %d records", len(asRecipient))
	}
}

func TestScan_SingleCollectionFailureIsTolerated(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	if _, err := mem.Add(ctx, store.OtherCollection, map[string]any{"donorId": "d1"}); err != nil {
		t.Fatal(err)
	}

	flaky := &failingStore{DocumentStore: mem, broken: map[string]bool{store.FoodCollection: true}}
	repo := repositories.NewStoreDonationRepository(flaky, zerolog.Nop())

	records, err := repo.Scan(ctx, "d1", models.RoleDonor)
	if err != nil {
		t.Fatalf("partial failure must not abort the scan: %v", err)
	}
	if len(records) != 1 || records[0].Category != models.CategoryOther {
		t.Fatalf("surviving collections should still be scanned: %+v", records)
	}
}

func TestScan_AllCollectionsFailingReturnsAggregateError(t *testing.T) {
	mem := store.NewMemoryStore()
	flaky := &failingStore{DocumentStore: mem, broken: map[string]bool{
		store.FoodCollection:     true,
		store.ClothingCollection: true,
		store.MonetaryCollection: true,
		store.OtherCollection:    true,
	}}
	repo := repositories.NewStoreDonationRepository(flaky, zerolog.Nop())

	if _, err := repo.Scan(context.Background(), "d1", models.RoleDonor); err == nil {
		t.Fatal("total failure must surface an error")
	}
}
