package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/adapter/http/dto"
	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/tests/testutil"
)

func TestLedgerFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router := newTestRouter(t, testDB)

	alice := testDB.CreateTestResident(ctx, "Alice Raza", decimal.Zero)
	bob := testDB.CreateTestResident(ctx, "Bob Iqbal", decimal.Zero)

	var deposit dto.TransactionResponse

	t.Run("deposit credits the balance with snapshots", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/residents/"+alice.ID+"/deposits", dto.DepositRequest{
			Amount:      decimal.NewFromInt(10000),
			ExternalRef: "DEP-001",
			Description: "initial deposit",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}
		decode(t, w, &deposit)

		if deposit.Kind != domain.TransactionKindDeposit {
			t.Errorf("expected deposit kind, got %q", deposit.Kind)
		}
		if !deposit.BalanceBefore.IsZero() || !deposit.BalanceAfter.Equal(decimal.NewFromInt(10000)) {
			t.Errorf("unexpected balance snapshots: before %v after %v",
				deposit.BalanceBefore, deposit.BalanceAfter)
		}
	})

	t.Run("zero deposit is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/residents/"+alice.ID+"/deposits", dto.DepositRequest{
			Amount:      decimal.Zero,
			ExternalRef: "DEP-002",
		})

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
		}
	})

	t.Run("payment debits the balance and records deposit usage", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/residents/"+alice.ID+"/payments", dto.PayRequest{
			Amount:      decimal.NewFromInt(4000),
			Description: "cam bill",
			DepositUsages: []dto.DepositUsageItem{
				{DepositID: deposit.ID, Amount: decimal.NewFromInt(4000)},
			},
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		var txn dto.TransactionResponse
		decode(t, w, &txn)
		if txn.Kind != domain.TransactionKindBillPayment {
			t.Errorf("expected bill_payment kind, got %q", txn.Kind)
		}
		if !txn.BalanceAfter.Equal(decimal.NewFromInt(6000)) {
			t.Errorf("expected balance 6000 after payment, got %v", txn.BalanceAfter)
		}
		if len(txn.DepositUsages) != 1 || txn.DepositUsages[0].DepositID != deposit.ID {
			t.Errorf("deposit usage did not persist: %+v", txn.DepositUsages)
		}
	})

	t.Run("payment beyond the balance is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/residents/"+alice.ID+"/payments", dto.PayRequest{
			Amount: decimal.NewFromInt(999999),
		})

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, w.Code, w.Body.String())
		}
	})

	t.Run("deposit usage beyond the deposit remainder is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/residents/"+alice.ID+"/payments", dto.PayRequest{
			Amount: decimal.NewFromInt(100),
			DepositUsages: []dto.DepositUsageItem{
				// 4000 of the 10000 deposit is already consumed.
				{DepositID: deposit.ID, Amount: decimal.NewFromInt(7000)},
			},
		})

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, w.Code, w.Body.String())
		}
	})

	t.Run("transfer moves balance with two linked legs", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/residents/"+alice.ID+"/transfers", dto.TransferRequest{
			ToResidentID: bob.ID,
			Amount:       decimal.NewFromInt(1000),
			Description:  "shared bill settlement",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		var resp dto.TransferResponse
		decode(t, w, &resp)
		if resp.Debit == nil || resp.Credit == nil {
			t.Fatal("expected both transfer legs")
		}
		if resp.Debit.Kind != domain.TransactionKindTransferOut || resp.Credit.Kind != domain.TransactionKindTransferIn {
			t.Errorf("unexpected leg kinds: %q / %q", resp.Debit.Kind, resp.Credit.Kind)
		}
		if !resp.Debit.BalanceAfter.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("expected sender balance 5000, got %v", resp.Debit.BalanceAfter)
		}
		if !resp.Credit.BalanceAfter.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected recipient balance 1000, got %v", resp.Credit.BalanceAfter)
		}
	})

	t.Run("transfer to self is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/residents/"+alice.ID+"/transfers", dto.TransferRequest{
			ToResidentID: alice.ID,
			Amount:       decimal.NewFromInt(100),
		})

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
		}
	})

	t.Run("transaction listing reports deposit remainder", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/residents/"+alice.ID+"/transactions", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.ListTransactionsResponse
		decode(t, w, &resp)
		if len(resp.Transactions) != 3 {
			t.Errorf("expected 3 transactions, got %d", len(resp.Transactions))
		}
		remaining, ok := resp.Deposits[deposit.ID]
		if !ok {
			t.Fatalf("expected deposit usage summary for %s, got %+v", deposit.ID, resp.Deposits)
		}
		if !remaining.Used.Equal(decimal.NewFromInt(4000)) || !remaining.Remaining.Equal(decimal.NewFromInt(6000)) {
			t.Errorf("unexpected deposit remainder: used %v remaining %v", remaining.Used, remaining.Remaining)
		}
	})

	t.Run("suspense deposit transfers to an identified resident", func(t *testing.T) {
		suspense := testDB.CreateSuspenseResident(ctx, decimal.Zero)

		w := doJSON(t, router, http.MethodPost, "/api/v1/residents/"+suspense.ID+"/deposits", dto.DepositRequest{
			Amount:      decimal.NewFromInt(2500),
			ExternalRef: "DEP-SUSP-1",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}
		var suspenseDeposit dto.TransactionResponse
		decode(t, w, &suspenseDeposit)

		w = doJSON(t, router, http.MethodPost, "/api/v1/deposits/"+suspenseDeposit.ID+"/transfer", dto.TransferSuspenseRequest{
			TargetResidentID: bob.ID,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var moved dto.TransactionResponse
		decode(t, w, &moved)
		if moved.ResidentID != bob.ID {
			t.Errorf("expected deposit to belong to target resident, got %q", moved.ResidentID)
		}
	})
}
