package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
	"github.com/twinvest/portfolio-ledger-backend/internal/service"
	"github.com/twinvest/portfolio-ledger-backend/internal/testutil"
)

func TestTransactionHandler(t *testing.T) {
	type harness struct {
		handler   *TransactionHandler
		portfolio *service.PortfolioService
		category  ledger.Category
	}

	setup := func(t *testing.T) *harness {
		t.Helper()
		db := testutil.SetupTestDB(t)
		qs := testutil.NewQuoteServer(t, nil)
		o, _ := testutil.NewTestOracle(t, qs, time.Minute)
		return &harness{
			handler:   NewTransactionHandler(testutil.NewTestTransactionService(t, db)),
			portfolio: testutil.NewTestPortfolioService(t, db, o),
			category:  testutil.NewCategory().WithName("TW Long-Term").Build(t, db),
		}
	}

	buy := func(t *testing.T, h *harness, shares, price float64) ledger.Transaction {
		t.Helper()
		txn, err := h.portfolio.ExecuteOrder(context.Background(), h.category.ID, ledger.Order{
			Action: ledger.ActionBuy, Symbol: "2330", Shares: shares, Price: price,
			ExchangeRate: 1, TotalAmount: shares * price,
		})
		if err != nil {
			t.Fatalf("Expected buy to succeed, got %v", err)
		}
		return txn
	}

	t.Run("GetTransactions returns the log", func(t *testing.T) {
		h := setup(t)
		buy(t, h, 100, 100)
		buy(t, h, 50, 120)

		req := httptest.NewRequest(http.MethodGet, "/api/transaction", nil)
		w := httptest.NewRecorder()
		h.handler.GetTransactions(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var txns []ledger.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&txns)
		if len(txns) != 2 {
			t.Errorf("Expected two transactions, got %d", len(txns))
		}
	})

	t.Run("GetTransactions filters by category", func(t *testing.T) {
		h := setup(t)
		buy(t, h, 100, 100)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/transaction",
			map[string]string{"category": "US Long-Term"})
		w := httptest.NewRecorder()
		h.handler.GetTransactions(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var txns []ledger.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&txns)
		if len(txns) != 0 {
			t.Errorf("Expected no transactions for the other category, got %d", len(txns))
		}
	})

	t.Run("GetTransaction returns one record", func(t *testing.T) {
		h := setup(t)
		txn := buy(t, h, 100, 100)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/transaction/"+txn.ID,
			map[string]string{"uuid": txn.ID})
		w := httptest.NewRecorder()
		h.handler.GetTransaction(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var got ledger.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&got)
		if got.ID != txn.ID || got.Symbol != "2330" {
			t.Errorf("Expected transaction %s, got %+v", txn.ID, got)
		}
	})

	t.Run("GetTransaction returns 404 for an unknown ID", func(t *testing.T) {
		h := setup(t)
		id := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/transaction/"+id,
			map[string]string{"uuid": id})
		w := httptest.NewRecorder()
		h.handler.GetTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("RevokeTransaction removes a revocable record", func(t *testing.T) {
		h := setup(t)
		buy(t, h, 100, 100)
		second := buy(t, h, 50, 120)

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/transaction/"+second.ID,
			map[string]string{"uuid": second.ID})
		w := httptest.NewRecorder()
		h.handler.RevokeTransaction(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("RevokeTransaction returns 409 for a dependent record", func(t *testing.T) {
		h := setup(t)
		first := buy(t, h, 100, 100)
		if _, err := h.portfolio.ExecuteOrder(context.Background(), h.category.ID, ledger.Order{
			Action: ledger.ActionSell, Symbol: "2330", Shares: 80, Price: 110,
			ExchangeRate: 1, TotalAmount: 8800,
		}); err != nil {
			t.Fatalf("Expected sell to succeed, got %v", err)
		}

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/transaction/"+first.ID,
			map[string]string{"uuid": first.ID})
		w := httptest.NewRecorder()
		h.handler.RevokeTransaction(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})
}
