package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
	"github.com/twinvest/portfolio-ledger-backend/internal/repository"
)

// CategoryBuilder provides a fluent interface for creating test categories.
//
// Example usage:
//
//	// Simple creation with defaults
//	category := testutil.NewCategory().Build(t, db)
//
//	// Customized category
//	category := testutil.NewCategory().
//	    WithName("US Growth").
//	    WithMarket(ledger.MarketUS).
//	    WithAllocation(40).
//	    Build(t, db)
type CategoryBuilder struct {
	ID                string
	Name              string
	Market            ledger.Market
	AllocationPercent float64
}

// NewCategory creates a CategoryBuilder with sensible defaults.
func NewCategory() *CategoryBuilder {
	return &CategoryBuilder{
		ID:     MakeID(),
		Name:   MakeCategoryName("Test Category"),
		Market: ledger.MarketTW,
	}
}

// WithID sets a custom ID.
func (b *CategoryBuilder) WithID(id string) *CategoryBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *CategoryBuilder) WithName(name string) *CategoryBuilder {
	b.Name = name
	return b
}

// WithMarket binds the category to a market.
func (b *CategoryBuilder) WithMarket(market ledger.Market) *CategoryBuilder {
	b.Market = market
	return b
}

// WithAllocation sets the target allocation percentage.
func (b *CategoryBuilder) WithAllocation(percent float64) *CategoryBuilder {
	b.AllocationPercent = percent
	return b
}

// Build inserts the category and returns it.
func (b *CategoryBuilder) Build(t *testing.T, db *sql.DB) ledger.Category {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO category (id, name, market, allocation_percent) VALUES (?, ?, ?, ?)`,
		b.ID, b.Name, string(b.Market), b.AllocationPercent,
	)
	if err != nil {
		t.Fatalf("Failed to insert test category: %v", err)
	}

	return ledger.Category{
		ID:                b.ID,
		Name:              b.Name,
		Market:            b.Market,
		AllocationPercent: b.AllocationPercent,
	}
}

// AssetBuilder provides a fluent interface for creating test asset
// positions with their lots. Shares and average cost are derived from the
// configured lots on Build.
type AssetBuilder struct {
	ID           string
	Symbol       string
	Name         string
	CurrentPrice float64
	Lots         []ledger.Lot
}

// NewAsset creates an AssetBuilder with sensible defaults and no lots.
func NewAsset() *AssetBuilder {
	return &AssetBuilder{
		ID:     MakeID(),
		Symbol: MakeSymbol("TEST"),
		Name:   "Test Asset",
	}
}

// WithID sets a custom ID.
func (b *AssetBuilder) WithID(id string) *AssetBuilder {
	b.ID = id
	return b
}

// WithSymbol sets a custom symbol.
func (b *AssetBuilder) WithSymbol(symbol string) *AssetBuilder {
	b.Symbol = symbol
	return b
}

// WithName sets a custom display name.
func (b *AssetBuilder) WithName(name string) *AssetBuilder {
	b.Name = name
	return b
}

// WithCurrentPrice sets the stored quote.
func (b *AssetBuilder) WithCurrentPrice(price float64) *AssetBuilder {
	b.CurrentPrice = price
	return b
}

// WithLot appends a purchase lot. Lots are kept in call order, oldest first.
func (b *AssetBuilder) WithLot(shares, costPerShare, exchangeRate float64, date time.Time) *AssetBuilder {
	b.Lots = append(b.Lots, ledger.Lot{
		ID:           MakeID(),
		Date:         date,
		Shares:       shares,
		CostPerShare: costPerShare,
		ExchangeRate: exchangeRate,
	})
	return b
}

// Build inserts the asset and its lots under the given category and returns
// the resulting position.
func (b *AssetBuilder) Build(t *testing.T, db *sql.DB, categoryID string) ledger.AssetPosition {
	t.Helper()

	lots := ledger.Lots(b.Lots)
	position := ledger.AssetPosition{
		ID:           b.ID,
		Symbol:       b.Symbol,
		Name:         b.Name,
		Shares:       lots.TotalShares(),
		AvgCost:      lots.AverageCost(),
		CurrentPrice: b.CurrentPrice,
		Lots:         lots,
	}

	_, err := db.Exec(
		`INSERT INTO asset (id, category_id, symbol, name, shares, avg_cost, current_price)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		position.ID, categoryID, position.Symbol, position.Name,
		position.Shares, position.AvgCost, position.CurrentPrice,
	)
	if err != nil {
		t.Fatalf("Failed to insert test asset: %v", err)
	}

	for i, lot := range position.Lots {
		_, err := db.Exec(
			`INSERT INTO lot (id, asset_id, seq, date, shares, cost_per_share, exchange_rate)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			lot.ID, position.ID, i+1, repository.FormatTime(lot.Date),
			lot.Shares, lot.CostPerShare, lot.ExchangeRate,
		)
		if err != nil {
			t.Fatalf("Failed to insert test lot: %v", err)
		}
	}

	return position
}

// InsertTransaction stores one audit log entry with the next sequence number.
func InsertTransaction(t *testing.T, db *sql.DB, txn ledger.Transaction) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO "transaction"
		 (id, seq, timestamp, asset_id, lot_id, symbol, action, shares, price,
		  exchange_rate, gross_amount, fee, tax, category_name, realized_pnl)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM "transaction"),
		         ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, repository.FormatTime(txn.Timestamp), txn.AssetID, txn.LotID,
		txn.Symbol, string(txn.Action), txn.Shares, txn.Price, txn.ExchangeRate,
		txn.GrossAmount, txn.Fee, txn.Tax, txn.CategoryName, txn.RealizedPnL,
	)
	if err != nil {
		t.Fatalf("Failed to insert test transaction: %v", err)
	}
}

// InsertCapitalEntry stores one capital log entry with the next sequence number.
func InsertCapitalEntry(t *testing.T, db *sql.DB, entry ledger.CapitalLogEntry) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO capital_log (id, seq, type, amount, timestamp)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM capital_log), ?, ?, ?)`,
		entry.ID, string(entry.Type), entry.Amount, repository.FormatTime(entry.Timestamp),
	)
	if err != nil {
		t.Fatalf("Failed to insert test capital entry: %v", err)
	}
}

// Deposit is a shorthand for inserting a deposit of the given amount.
func Deposit(t *testing.T, db *sql.DB, amount float64) ledger.CapitalLogEntry {
	t.Helper()

	entry := ledger.CapitalLogEntry{
		ID:        MakeID(),
		Type:      ledger.CapitalDeposit,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	}
	InsertCapitalEntry(t, db, entry)
	return entry
}
