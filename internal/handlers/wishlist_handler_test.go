package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rahat-dev/sharebite/backend/internal/handlers"
	"github.com/rahat-dev/sharebite/backend/internal/middleware"
	"github.com/rahat-dev/sharebite/backend/internal/models"
	"github.com/rahat-dev/sharebite/backend/internal/repositories"
	"github.com/rahat-dev/sharebite/backend/internal/services"
	"github.com/rahat-dev/sharebite/backend/internal/store"
	"github.com/rahat-dev/sharebite/backend/validators"
)

func testServer(t *testing.T) (*echo.Echo, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	log := zerolog.Nop()

	wishlistRepo := repositories.NewStoreWishlistRepository(mem, log)
	donationRepo := repositories.NewStoreDonationRepository(mem, log)
	resolver := services.NewResolver(repositories.NewStoreUserRepository(mem), services.NewProfileCache())
	aggregator := services.NewAggregator(donationRepo, resolver, log)
	fulfillment := services.NewFulfillmentService(wishlistRepo, donationRepo, nil, log)

	e := echo.New()
	e.Validator = validators.NewValidator()
	api := e.Group("/api/v1")
	api.Use(middleware.HeaderAuthMiddleware())
	handlers.NewWishlistHandler(wishlistRepo, fulfillment).RegisterWishlistRoutes(api)
	handlers.NewDonationHandler(donationRepo, aggregator).RegisterDonationRoutes(api)
	return e, mem
}

func doJSON(t *testing.T, e *echo.Echo, method, path, actor, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Actor-ID", actor)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWishlistFlow_CreateListFulfill(t *testing.T) {
	e, _ := testServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/wishlist", "rec1",
		`{"name":"rice","category":"Food","requester":"Shelter A"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	var created models.WishlistRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Status != models.StatusPending || created.RecipientID != "rec1" {
		t.Fatalf("created request drifted: %+v", created)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/v1/wishlist", "donor9", "")
	var pending []models.WishlistRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &pending); err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("want 1 pending request, got %d", len(pending))
	}

	rec = doJSON(t, e, http.MethodPost, "/api/v1/wishlist/"+created.ID+"/fulfill", "donor9",
		`{"category":"Food","items":[{"id":"rice","name":"Rice","quantity":2}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("fulfill: %d %s", rec.Code, rec.Body)
	}

	// The donor's history now carries the fulfilling donation.
	rec = doJSON(t, e, http.MethodGet, "/api/v1/donations/history?role=donor", "donor9", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("history: %d %s", rec.Code, rec.Body)
	}
	var agg services.Aggregation
	if err := json.Unmarshal(rec.Body.Bytes(), &agg); err != nil {
		t.Fatal(err)
	}
	if agg.Totals.Count != 1 || agg.Totals.PerCategoryCount[models.CategoryFood] != 1 {
		t.Fatalf("history totals drifted: %+v", agg.Totals)
	}

	// Open list is empty again.
	rec = doJSON(t, e, http.MethodGet, "/api/v1/wishlist", "donor9", "")
	pending = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &pending); err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("fulfilled request still listed as pending: %+v", pending)
	}
}

func TestWishlist_OwnershipEnforcedAtHandler(t *testing.T) {
	e, _ := testServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/wishlist", "rec1",
		`{"name":"coats","category":"Clothing"}`)
	var created models.WishlistRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, e, http.MethodDelete, "/api/v1/wishlist/"+created.ID, "intruder", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: want 403, got %d", rec.Code)
	}

	rec = doJSON(t, e, http.MethodPut, "/api/v1/wishlist/"+created.ID, "intruder", `{"name":"mine now"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner edit: want 403, got %d", rec.Code)
	}

	rec = doJSON(t, e, http.MethodDelete, "/api/v1/wishlist/"+created.ID, "rec1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete: want 204, got %d", rec.Code)
	}
}

func TestRecordDonation_ValidationSurfacesAs400(t *testing.T) {
	e, _ := testServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/donations", "donor1",
		`{"category":"Food","items":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty items: want 400, got %d %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, e, http.MethodPost, "/api/v1/donations", "donor1",
		`{"category":"Monetary","amount":25}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("valid monetary donation: want 201, got %d %s", rec.Code, rec.Body)
	}
}
