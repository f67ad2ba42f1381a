package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/adapter/http/dto"
	"github.com/sgcerp/tajbilling/tests/testutil"
)

func TestPropertyLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router := newTestRouter(t, testDB)

	var created dto.PropertyResponse

	t.Run("create property with valid data", func(t *testing.T) {
		req := dto.CreatePropertyRequest{
			Name:       "House 12",
			PlotNumber: "12",
			Sector:     "B",
			OwnerName:  "Asad Khan",
			AreaValue:  "4",
			AreaUnit:   "Marla",
			Meters:     []dto.MeterItem{{MeterNumber: "MTR-100", Floor: "Ground"}},
		}

		w := doJSON(t, router, http.MethodPost, "/api/v1/properties/", req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}
		decode(t, w, &created)

		if created.Name != req.Name {
			t.Errorf("expected name %q, got %q", req.Name, created.Name)
		}
		if created.SizeLabel != "4M" {
			t.Errorf("expected size label 4M, got %q", created.SizeLabel)
		}
		if created.Serial == 0 {
			t.Error("expected a serial to be assigned")
		}
		if len(created.Meters) != 1 || created.Meters[0].MeterNumber != "MTR-100" {
			t.Errorf("meters did not persist: %+v", created.Meters)
		}
	})

	t.Run("get property by ID", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/properties/"+created.ID, nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.PropertyResponse
		decode(t, w, &resp)
		if resp.ID != created.ID {
			t.Errorf("expected ID %q, got %q", created.ID, resp.ID)
		}
	})

	t.Run("update property owner name", func(t *testing.T) {
		owner := "Bilal Ahmed"
		w := doJSON(t, router, http.MethodPut, "/api/v1/properties/"+created.ID, dto.UpdatePropertyRequest{OwnerName: &owner})

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.PropertyResponse
		decode(t, w, &resp)
		if resp.OwnerName != owner {
			t.Errorf("expected owner %q, got %q", owner, resp.OwnerName)
		}
		if resp.Name != created.Name {
			t.Errorf("expected name unchanged, got %q", resp.Name)
		}
	})

	t.Run("get non-existent property returns 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/properties/non-existent-id", nil)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})

	t.Run("list properties", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		testDB.CreateTestProperty(ctx, "list-1", "Owner One", 4, nil)
		testDB.CreateTestProperty(ctx, "list-2", "Owner Two", 10, nil)

		w := doJSON(t, router, http.MethodGet, "/api/v1/properties/?limit=10&offset=0", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.ListPropertiesResponse
		decode(t, w, &resp)
		if len(resp.Properties) != 2 {
			t.Errorf("expected 2 properties, got %d", len(resp.Properties))
		}
	})

	t.Run("list unassigned properties only", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		resident := testDB.CreateTestResident(ctx, "Linked Resident", decimal.Zero)
		testDB.CreateTestProperty(ctx, "linked", "Linked Resident", 4, &resident.ID)
		testDB.CreateTestProperty(ctx, "orphan", "Unknown Owner", 4, nil)

		w := doJSON(t, router, http.MethodGet, "/api/v1/properties/?unassigned=true", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.ListPropertiesResponse
		decode(t, w, &resp)
		if len(resp.Properties) != 1 || resp.Properties[0].Name != "orphan" {
			t.Errorf("expected only the orphan property, got %+v", resp.Properties)
		}
	})

	t.Run("deactivate property", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		property := testDB.CreateTestProperty(ctx, "retiring", "Old Owner", 4, nil)

		w := doJSON(t, router, http.MethodDelete, "/api/v1/properties/"+property.ID, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected status %d, got %d: %s", http.StatusNoContent, w.Code, w.Body.String())
		}

		w = doJSON(t, router, http.MethodGet, "/api/v1/properties/"+property.ID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("deactivated property should still be readable, got %d", w.Code)
		}
		var resp dto.PropertyResponse
		decode(t, w, &resp)
		if resp.Active {
			t.Error("property should be inactive after delete")
		}

		w = doJSON(t, router, http.MethodGet, "/api/v1/properties/?active=true", nil)
		var listing dto.ListPropertiesResponse
		decode(t, w, &listing)
		if len(listing.Properties) != 0 {
			t.Errorf("active listing should exclude the deactivated property, got %+v", listing.Properties)
		}
	})

	t.Run("deactivate linked property is rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		resident := testDB.CreateTestResident(ctx, "Still Here", decimal.Zero)
		property := testDB.CreateTestProperty(ctx, "occupied", "Still Here", 4, &resident.ID)

		w := doJSON(t, router, http.MethodDelete, "/api/v1/properties/"+property.ID, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
		}
	})
}
