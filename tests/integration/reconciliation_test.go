package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/adapter/http/dto"
	"github.com/sgcerp/tajbilling/internal/usecase"
	"github.com/sgcerp/tajbilling/tests/testutil"
)

func TestReconciliation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router := newTestRouter(t, testDB)

	t.Run("clean resident reconciles", func(t *testing.T) {
		resident := testDB.CreateTestResident(ctx, "Clean Resident", decimal.Zero)

		w := doJSON(t, router, http.MethodPost, "/api/v1/residents/"+resident.ID+"/deposits", dto.DepositRequest{
			Amount:      decimal.NewFromInt(3000),
			ExternalRef: "DEP-REC-1",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("deposit failed: %d: %s", w.Code, w.Body.String())
		}

		w = doJSON(t, router, http.MethodGet, "/api/v1/reconciliation/residents/"+resident.ID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.ReconcileResidentResponse
		decode(t, w, &resp)
		if !resp.Result.IsReconciled {
			t.Errorf("expected clean resident to reconcile: %+v", resp.Result)
		}
		if len(resp.Discrepancies) != 0 {
			t.Errorf("expected no discrepancies, got %+v", resp.Discrepancies)
		}
	})

	t.Run("balance drift is surfaced, never swallowed", func(t *testing.T) {
		// A recorded balance with no transaction trail behind it.
		drifted := testDB.CreateTestResident(ctx, "Drifted Resident", decimal.NewFromInt(5000))

		w := doJSON(t, router, http.MethodGet, "/api/v1/reconciliation/residents/"+drifted.ID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.ReconcileResidentResponse
		decode(t, w, &resp)
		if resp.Result.IsReconciled {
			t.Error("expected drifted resident to fail reconciliation")
		}
		if !resp.Result.Difference.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("expected difference 5000, got %v", resp.Result.Difference)
		}
		if len(resp.Discrepancies) == 0 {
			t.Error("expected a balance drift discrepancy")
		}
	})

	t.Run("report aggregates all checks", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/reconciliation/report", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var report usecase.Report
		decode(t, w, &report)
		if report.TotalResidents < 2 {
			t.Errorf("expected at least 2 residents in report, got %d", report.TotalResidents)
		}
		if len(report.Discrepancies) == 0 {
			t.Error("expected the drifted balance to appear in the report")
		}
	})

	t.Run("owner matches are suggested for unassigned properties", func(t *testing.T) {
		testDB.CreateTestResident(ctx, "Kamran Shah", decimal.Zero)
		testDB.CreateTestProperty(ctx, "House 9", "Kamran Shah", 4, nil)

		w := doJSON(t, router, http.MethodGet, "/api/v1/reconciliation/owner-matches", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var matches []usecase.OwnerMatch
		decode(t, w, &matches)

		found := false
		for _, m := range matches {
			if m.OwnerName == "Kamran Shah" && m.ResidentName == "Kamran Shah" {
				found = true
				if !m.Exact {
					t.Error("expected an exact name match")
				}
			}
		}
		if !found {
			t.Errorf("expected a suggestion for Kamran Shah, got %+v", matches)
		}

		// Suggestions are never applied automatically.
		w = doJSON(t, router, http.MethodGet, "/api/v1/properties/?unassigned=true", nil)
		var props dto.ListPropertiesResponse
		decode(t, w, &props)
		if len(props.Properties) == 0 {
			t.Error("expected the property to remain unassigned")
		}
	})
}
