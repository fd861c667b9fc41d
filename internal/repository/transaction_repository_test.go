package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
	"github.com/twinvest/portfolio-ledger-backend/internal/repository"
	"github.com/twinvest/portfolio-ledger-backend/internal/testutil"
)

func sampleTxn(categoryName string, action ledger.Action) ledger.Transaction {
	return ledger.Transaction{
		ID:           testutil.MakeID(),
		Timestamp:    time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
		AssetID:      testutil.MakeID(),
		Symbol:       "2330",
		Action:       action,
		Shares:       10,
		Price:        100,
		ExchangeRate: 1,
		GrossAmount:  1000,
		CategoryName: categoryName,
	}
}

func TestGetTransactions(t *testing.T) {
	t.Run("returns the full log in append order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		first := sampleTxn("TW Long-Term", ledger.ActionBuy)
		second := sampleTxn("TW Long-Term", ledger.ActionSell)
		testutil.InsertTransaction(t, db, first)
		testutil.InsertTransaction(t, db, second)

		txns, err := repo.GetTransactions("")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(txns) != 2 {
			t.Fatalf("Expected two transactions, got %d", len(txns))
		}
		if txns[0].ID != first.ID || txns[1].ID != second.ID {
			t.Errorf("Expected append order preserved")
		}
	})

	t.Run("filters by category name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		testutil.InsertTransaction(t, db, sampleTxn("TW Long-Term", ledger.ActionBuy))
		testutil.InsertTransaction(t, db, sampleTxn("US Long-Term", ledger.ActionBuy))

		txns, err := repo.GetTransactions("US Long-Term")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(txns) != 1 || txns[0].CategoryName != "US Long-Term" {
			t.Errorf("Expected only the US transaction, got %+v", txns)
		}
	})

	t.Run("empty log yields an empty slice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		txns, err := repo.GetTransactions("")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if txns == nil || len(txns) != 0 {
			t.Errorf("Expected empty slice, got %+v", txns)
		}
	})
}

func TestGetTransaction(t *testing.T) {
	t.Run("retrieves one record by ID", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		want := sampleTxn("TW Long-Term", ledger.ActionBuy)
		want.LotID = testutil.MakeID()
		testutil.InsertTransaction(t, db, want)

		got, err := repo.GetTransaction(want.ID)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got.ID != want.ID || got.LotID != want.LotID || got.Action != want.Action {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
		if !got.Timestamp.Equal(want.Timestamp) {
			t.Errorf("Expected timestamp %v, got %v", want.Timestamp, got.Timestamp)
		}
	})

	t.Run("missing ID fails with ErrTransactionNotFound", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		_, err := repo.GetTransaction(testutil.MakeID())
		if !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Errorf("Expected ErrTransactionNotFound, got %v", err)
		}
	})
}

func TestCapitalRepository(t *testing.T) {
	t.Run("insert then read back in order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewCapitalRepository(db)
		ctx := context.Background()

		day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
		first := ledger.CapitalLogEntry{ID: testutil.MakeID(), Type: ledger.CapitalDeposit, Amount: 50000, Timestamp: day}
		second := ledger.CapitalLogEntry{ID: testutil.MakeID(), Type: ledger.CapitalWithdraw, Amount: 10000, Timestamp: day.AddDate(0, 0, 1)}

		if err := repo.InsertEntry(ctx, first); err != nil {
			t.Fatalf("Expected insert to succeed, got %v", err)
		}
		if err := repo.InsertEntry(ctx, second); err != nil {
			t.Fatalf("Expected insert to succeed, got %v", err)
		}

		entries, err := repo.GetEntries()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("Expected two entries, got %d", len(entries))
		}
		if entries[0].ID != first.ID || entries[1].ID != second.ID {
			t.Errorf("Expected append order preserved")
		}
		if ledger.TotalCapital(entries) != 40000 {
			t.Errorf("Expected fold 40000, got %v", ledger.TotalCapital(entries))
		}
	})
}
