package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
	"github.com/twinvest/portfolio-ledger-backend/internal/service"
	"github.com/twinvest/portfolio-ledger-backend/internal/testutil"
)

func TestEnsureSeeded(t *testing.T) {
	t.Run("seeds the default buckets once", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		qs := testutil.NewQuoteServer(t, nil)
		o, _ := testutil.NewTestOracle(t, qs, time.Minute)
		svc := testutil.NewTestPortfolioService(t, db, o)
		ctx := context.Background()

		if err := svc.EnsureSeeded(ctx); err != nil {
			t.Fatalf("Expected seeding to succeed, got %v", err)
		}
		if err := svc.EnsureSeeded(ctx); err != nil {
			t.Fatalf("Expected second call to be a no-op, got %v", err)
		}

		p, err := svc.GetPortfolio()
		if err != nil {
			t.Fatalf("Expected load to succeed, got %v", err)
		}
		if len(p.Categories) != len(service.DefaultCategories()) {
			t.Fatalf("Expected the default category set, got %d", len(p.Categories))
		}

		markets := map[ledger.Market]int{}
		for _, c := range p.Categories {
			markets[c.Market]++
		}
		if markets[ledger.MarketTW] != 2 || markets[ledger.MarketUS] != 2 {
			t.Errorf("Expected two buckets per market, got %v", markets)
		}
	})

	t.Run("existing categories are left alone", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		qs := testutil.NewQuoteServer(t, nil)
		o, _ := testutil.NewTestOracle(t, qs, time.Minute)
		svc := testutil.NewTestPortfolioService(t, db, o)

		testutil.NewCategory().WithName("My Bucket").Build(t, db)

		if err := svc.EnsureSeeded(context.Background()); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		p, _ := svc.GetPortfolio()
		if len(p.Categories) != 1 {
			t.Errorf("Expected the existing category untouched, got %d", len(p.Categories))
		}
	})
}

func TestExecuteOrderService(t *testing.T) {
	t.Run("a buy lands in storage with its transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		qs := testutil.NewQuoteServer(t, nil)
		o, _ := testutil.NewTestOracle(t, qs, time.Minute)
		svc := testutil.NewTestPortfolioService(t, db, o)
		ctx := context.Background()

		category := testutil.NewCategory().WithName("TW Long-Term").Build(t, db)

		txn, err := svc.ExecuteOrder(ctx, category.ID, ledger.Order{
			Action: ledger.ActionBuy, Symbol: "2330", Name: "TSMC",
			Shares: 100, Price: 100, ExchangeRate: 1, TotalAmount: 10000,
		})
		if err != nil {
			t.Fatalf("Expected order to succeed, got %v", err)
		}
		if txn.Action != ledger.ActionBuy || txn.LotID == "" {
			t.Errorf("Expected a buy transaction with a lot ID, got %+v", txn)
		}

		p, _ := svc.GetPortfolio()
		if len(p.Categories[0].Assets) != 1 || p.Categories[0].Assets[0].Shares != 100 {
			t.Errorf("Expected stored position with 100 shares, got %+v", p.Categories[0].Assets)
		}
	})

	t.Run("a failed sell leaves storage untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		qs := testutil.NewQuoteServer(t, nil)
		o, _ := testutil.NewTestOracle(t, qs, time.Minute)
		svc := testutil.NewTestPortfolioService(t, db, o)
		ctx := context.Background()

		category := testutil.NewCategory().WithName("TW Long-Term").Build(t, db)
		testutil.NewAsset().WithSymbol("2330").WithLot(10, 100, 1, time.Now()).Build(t, db, category.ID)

		_, err := svc.ExecuteOrder(ctx, category.ID, ledger.Order{
			Action: ledger.ActionSell, Symbol: "2330",
			Shares: 50, Price: 110, ExchangeRate: 1, TotalAmount: 5500,
		})
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Fatalf("Expected ErrInsufficientShares, got %v", err)
		}

		p, _ := svc.GetPortfolio()
		if p.Categories[0].Assets[0].Shares != 10 {
			t.Errorf("Expected stored shares unchanged, got %v", p.Categories[0].Assets[0].Shares)
		}
		if len(p.Transactions) != 0 {
			t.Errorf("Expected no transaction recorded, got %d", len(p.Transactions))
		}
	})

	t.Run("unknown category fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		qs := testutil.NewQuoteServer(t, nil)
		o, _ := testutil.NewTestOracle(t, qs, time.Minute)
		svc := testutil.NewTestPortfolioService(t, db, o)

		_, err := svc.ExecuteOrder(context.Background(), testutil.MakeID(), ledger.Order{
			Action: ledger.ActionBuy, Symbol: "2330", Shares: 1, Price: 100, ExchangeRate: 1,
		})
		if !errors.Is(err, apperrors.ErrCategoryNotFound) {
			t.Errorf("Expected ErrCategoryNotFound, got %v", err)
		}
	})
}

func TestGetCalculatedPortfolio(t *testing.T) {
	t.Run("revalues holdings against fetched quotes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		qs := testutil.NewQuoteServer(t, map[string]float64{"2330.TW": 130})
		o, _ := testutil.NewTestOracle(t, qs, time.Minute)
		svc := testutil.NewTestPortfolioService(t, db, o)

		testutil.Deposit(t, db, 100000)
		category := testutil.NewCategory().WithName("TW Long-Term").WithAllocation(50).Build(t, db)
		testutil.NewAsset().WithSymbol("2330").WithLot(100, 100, 1, time.Now()).Build(t, db, category.ID)

		calc, err := svc.GetCalculatedPortfolio(context.Background())
		if err != nil {
			t.Fatalf("Expected revaluation to succeed, got %v", err)
		}

		asset := calc.Categories[0].Assets[0]
		if asset.MarketValue != 13000 {
			t.Errorf("Expected market value 13000 from the fetched quote, got %v", asset.MarketValue)
		}
		if calc.TotalCapital != 100000 {
			t.Errorf("Expected total capital 100000, got %v", calc.TotalCapital)
		}
		if calc.Categories[0].ProjectedInvestment != 50000 {
			t.Errorf("Expected projected investment 50000, got %v", calc.Categories[0].ProjectedInvestment)
		}
	})

	t.Run("unresolvable symbols fall back to stored quotes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		qs := testutil.NewQuoteServer(t, nil) // provider knows nothing
		o, _ := testutil.NewTestOracle(t, qs, time.Minute)
		svc := testutil.NewTestPortfolioService(t, db, o)

		category := testutil.NewCategory().WithName("TW Long-Term").Build(t, db)
		testutil.NewAsset().WithSymbol("2330").WithCurrentPrice(95).
			WithLot(100, 100, 1, time.Now()).Build(t, db, category.ID)

		calc, err := svc.GetCalculatedPortfolio(context.Background())
		if err != nil {
			t.Fatalf("Expected revaluation to succeed, got %v", err)
		}
		if got := calc.Categories[0].Assets[0].MarketValue; got != 9500 {
			t.Errorf("Expected market value from the stored quote, got %v", got)
		}
	})
}

func TestAllocationAndCapital(t *testing.T) {
	t.Run("SetAllocation validates and stores", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		qs := testutil.NewQuoteServer(t, nil)
		o, _ := testutil.NewTestOracle(t, qs, time.Minute)
		svc := testutil.NewTestPortfolioService(t, db, o)
		ctx := context.Background()

		category := testutil.NewCategory().Build(t, db)

		if err := svc.SetAllocation(ctx, category.ID, 120); !errors.Is(err, apperrors.ErrInvalidAllocation) {
			t.Errorf("Expected ErrInvalidAllocation, got %v", err)
		}
		if err := svc.SetAllocation(ctx, testutil.MakeID(), 50); !errors.Is(err, apperrors.ErrCategoryNotFound) {
			t.Errorf("Expected ErrCategoryNotFound, got %v", err)
		}
		if err := svc.SetAllocation(ctx, category.ID, 50); err != nil {
			t.Fatalf("Expected success, got %v", err)
		}

		p, _ := svc.GetPortfolio()
		if p.Categories[0].AllocationPercent != 50 {
			t.Errorf("Expected 50 stored, got %v", p.Categories[0].AllocationPercent)
		}
	})

	t.Run("RecordCapital appends and returns the running fold", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		qs := testutil.NewQuoteServer(t, nil)
		o, _ := testutil.NewTestOracle(t, qs, time.Minute)
		svc := testutil.NewTestPortfolioService(t, db, o)
		ctx := context.Background()

		_, total, err := svc.RecordCapital(ctx, ledger.CapitalDeposit, 100000)
		if err != nil {
			t.Fatalf("Expected deposit to succeed, got %v", err)
		}
		if total != 100000 {
			t.Errorf("Expected total 100000, got %v", total)
		}

		_, total, err = svc.RecordCapital(ctx, ledger.CapitalWithdraw, 30000)
		if err != nil {
			t.Fatalf("Expected withdrawal to succeed, got %v", err)
		}
		if total != 70000 {
			t.Errorf("Expected total 70000, got %v", total)
		}

		entries, folded, err := svc.GetCapitalLog()
		if err != nil {
			t.Fatalf("Expected log read to succeed, got %v", err)
		}
		if len(entries) != 2 || folded != 70000 {
			t.Errorf("Expected 2 entries folding to 70000, got %d and %v", len(entries), folded)
		}
	})
}

func TestBackupRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	qs := testutil.NewQuoteServer(t, nil)
	o, _ := testutil.NewTestOracle(t, qs, time.Minute)
	svc := testutil.NewTestPortfolioService(t, db, o)
	ctx := context.Background()

	testutil.Deposit(t, db, 100000)
	category := testutil.NewCategory().WithName("TW Long-Term").WithAllocation(40).Build(t, db)
	testutil.NewAsset().WithSymbol("2330").WithLot(100, 100, 1, time.Now().UTC()).Build(t, db, category.ID)

	data, filename, err := svc.ExportBackup()
	if err != nil {
		t.Fatalf("Expected export to succeed, got %v", err)
	}
	if filename != "portfolio_"+time.Now().UTC().Format("2006-01-02")+".json" {
		t.Errorf("Unexpected filename %q", filename)
	}

	// Wipe by importing an empty-but-valid document, then restore.
	if err := svc.ImportBackup(ctx, []byte(`{"totalCapital":0,"categories":[]}`)); err != nil {
		t.Fatalf("Expected wipe import to succeed, got %v", err)
	}
	p, _ := svc.GetPortfolio()
	if len(p.Categories) != 0 {
		t.Fatalf("Expected empty state after wipe, got %+v", p.Categories)
	}

	if err := svc.ImportBackup(ctx, data); err != nil {
		t.Fatalf("Expected restore to succeed, got %v", err)
	}
	p, _ = svc.GetPortfolio()
	if len(p.Categories) != 1 || p.Categories[0].Name != "TW Long-Term" {
		t.Fatalf("Expected restored category, got %+v", p.Categories)
	}
	if p.Categories[0].Assets[0].Shares != 100 {
		t.Errorf("Expected restored position, got %+v", p.Categories[0].Assets)
	}
	if p.TotalCapital() != 100000 {
		t.Errorf("Expected restored capital 100000, got %v", p.TotalCapital())
	}

	t.Run("a rejected import leaves state untouched", func(t *testing.T) {
		if err := svc.ImportBackup(ctx, []byte(`{"nope": true}`)); !errors.Is(err, apperrors.ErrInvalidBackup) {
			t.Fatalf("Expected ErrInvalidBackup, got %v", err)
		}
		p, _ := svc.GetPortfolio()
		if len(p.Categories) != 1 {
			t.Errorf("Expected state untouched after rejected import, got %+v", p.Categories)
		}
	})
}
