// Package ledger implements the portfolio ledger: tax-lot bookkeeping,
// FIFO order processing, capital log accounting and allocation targets.
//
// All mutating operations are copy-on-write: they return new snapshots and
// never modify their inputs, so a caller can discard an update when a
// downstream step fails.
package ledger

import "time"

// Market identifies the venue a category is bound to.
type Market string

// Supported markets.
const (
	MarketTW Market = "TW"
	MarketUS Market = "US"
)

// Valid reports whether m is a known market.
func (m Market) Valid() bool {
	return m == MarketTW || m == MarketUS
}

// Action is the kind of ledger event a transaction records.
type Action string

// Supported transaction actions.
const (
	ActionBuy      Action = "BUY"
	ActionSell     Action = "SELL"
	ActionDividend Action = "DIVIDEND"
)

// Lot is one discrete purchase of shares. It is immutable once created
// except for Shares, which is only ever reduced when consumed by a sale.
// CostPerShare is in the instrument's native currency; ExchangeRate is the
// native-to-base rate captured at purchase time.
type Lot struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	Shares       float64   `json:"shares"`
	CostPerShare float64   `json:"costPerShare"`
	ExchangeRate float64   `json:"exchangeRate"`
}

// BaseCost returns the lot's cost in base currency terms,
// using the lot's own historical exchange rate.
func (l Lot) BaseCost() float64 {
	return l.Shares * l.CostPerShare * l.ExchangeRate
}

// AssetPosition is one instrument held inside one category. Lots are kept
// oldest first; insertion order breaks ties between equal acquisition dates.
//
// Invariants: Shares equals the sum of live lot shares, AvgCost equals the
// base-currency weighted mean cost per share, and a position with zero
// shares must not exist in a category's asset set.
type AssetPosition struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Shares       float64 `json:"shares"`
	AvgCost      float64 `json:"avgCost"`
	CurrentPrice float64 `json:"currentPrice"`
	Lots         Lots    `json:"lots"`
}

// Category is a named capital allocation bucket bound to one market.
// AllocationPercent is a target share of total capital; the sum across
// categories is not forced to 100.
type Category struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Market            Market          `json:"market"`
	AllocationPercent float64         `json:"allocationPercent"`
	Assets            []AssetPosition `json:"assets"`
}

// Asset returns the position with the given asset ID or symbol, preferring
// the ID when both are set. The second return value reports whether a
// position was found.
func (c Category) Asset(assetID, symbol string) (AssetPosition, bool) {
	for _, a := range c.Assets {
		if assetID != "" && a.ID == assetID {
			return a, true
		}
		if assetID == "" && a.Symbol == symbol {
			return a, true
		}
	}
	return AssetPosition{}, false
}

// Transaction is an append-only audit entry for a buy, sell or dividend
// event. LotID is set only for buys and identifies the lot the buy created.
// RealizedPnL is zero for buys, proceeds minus FIFO-matched cost minus fee
// and tax for sells, and net cash for dividends. Records are never mutated;
// revocation must reverse the ledger effect exactly.
type Transaction struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	AssetID      string    `json:"assetId"`
	LotID        string    `json:"lotId,omitempty"`
	Symbol       string    `json:"symbol"`
	Action       Action    `json:"action"`
	Shares       float64   `json:"shares"`
	Price        float64   `json:"price"`
	ExchangeRate float64   `json:"exchangeRate"`
	GrossAmount  float64   `json:"grossAmount"`
	Fee          float64   `json:"fee"`
	Tax          float64   `json:"tax"`
	CategoryName string    `json:"categoryName"`
	RealizedPnL  float64   `json:"realizedPnL"`
}

// CapitalEntryType distinguishes deposits from withdrawals.
type CapitalEntryType string

// Capital log entry types.
const (
	CapitalDeposit  CapitalEntryType = "DEPOSIT"
	CapitalWithdraw CapitalEntryType = "WITHDRAW"
)

// CapitalLogEntry is one deposit or withdrawal against total capital.
// Total capital is always the fold of all entries, never a stored counter.
type CapitalLogEntry struct {
	ID        string           `json:"id"`
	Type      CapitalEntryType `json:"type"`
	Amount    float64          `json:"amount"`
	Timestamp time.Time        `json:"timestamp"`
}

// Settings holds portfolio-wide parameters. USExchangeRate is the current
// USD-to-base rate applied uniformly when valuing US holdings.
type Settings struct {
	USExchangeRate float64 `json:"usExchangeRate"`
}

// Portfolio is the full ledger state: allocation buckets, the immutable
// transaction log and the capital log.
type Portfolio struct {
	Settings     Settings          `json:"settings"`
	Categories   []Category        `json:"categories"`
	Transactions []Transaction     `json:"transactions"`
	CapitalLogs  []CapitalLogEntry `json:"capitalLogs"`
	LastModified time.Time         `json:"lastModified"`
}

// Category returns the category with the given ID.
func (p Portfolio) Category(categoryID string) (Category, bool) {
	for _, c := range p.Categories {
		if c.ID == categoryID {
			return c, true
		}
	}
	return Category{}, false
}

// TotalCapital folds the capital log into the current total: deposits add,
// withdrawals subtract. The total is always derived, never a stored counter.
func (p Portfolio) TotalCapital() float64 {
	return TotalCapital(p.CapitalLogs)
}

// TotalCapital folds capital log entries into a total.
func TotalCapital(logs []CapitalLogEntry) float64 {
	var total float64
	for _, e := range logs {
		switch e.Type {
		case CapitalDeposit:
			total += e.Amount
		case CapitalWithdraw:
			total -= e.Amount
		}
	}
	return total
}

// Order is a single buy, sell or dividend instruction against one category.
// TotalAmount is the order's gross amount already expressed in base
// currency. AssetID is optional; when empty the symbol selects the position.
type Order struct {
	Action       Action    `json:"action"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Shares       float64   `json:"shares"`
	Price        float64   `json:"price"`
	ExchangeRate float64   `json:"exchangeRate"`
	TotalAmount  float64   `json:"totalAmount"`
	Fee          float64   `json:"fee"`
	Tax          float64   `json:"tax"`
	AssetID      string    `json:"assetId,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitempty"`
}
