package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
	"github.com/twinvest/portfolio-ledger-backend/internal/oracle"
	"github.com/twinvest/portfolio-ledger-backend/internal/repository"
	"github.com/twinvest/portfolio-ledger-backend/internal/snapshot"
	"github.com/twinvest/portfolio-ledger-backend/internal/valuation"
)

// PortfolioService coordinates the ledger, the valuation engine and the
// price oracle. Mutations are serialized through the latest stored
// snapshot: load, apply a copy-on-write ledger operation, persist the
// result. A failed operation never leaves partial state behind.
type PortfolioService struct {
	portfolioRepo *repository.PortfolioRepository
	capitalRepo   *repository.CapitalRepository
	priceOracle   *oracle.Oracle
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	capitalRepo *repository.CapitalRepository,
	priceOracle *oracle.Oracle,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		capitalRepo:   capitalRepo,
		priceOracle:   priceOracle,
	}
}

// DefaultCategories is the fixed allocation bucket set seeded at first
// start: a long-term and a speculative bucket per market.
func DefaultCategories() []ledger.Category {
	return []ledger.Category{
		{ID: "f47ac10b-58cc-4372-a567-0e02b2c3d401", Name: "TW Long-Term", Market: ledger.MarketTW},
		{ID: "f47ac10b-58cc-4372-a567-0e02b2c3d402", Name: "TW Speculative", Market: ledger.MarketTW},
		{ID: "f47ac10b-58cc-4372-a567-0e02b2c3d403", Name: "US Long-Term", Market: ledger.MarketUS},
		{ID: "f47ac10b-58cc-4372-a567-0e02b2c3d404", Name: "US Speculative", Market: ledger.MarketUS},
	}
}

// EnsureSeeded inserts the default category set when the store is empty.
func (s *PortfolioService) EnsureSeeded(ctx context.Context) error {
	n, err := s.portfolioRepo.CountCategories(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return s.portfolioRepo.SeedCategories(ctx, DefaultCategories())
}

// GetPortfolio returns the raw ledger snapshot.
func (s *PortfolioService) GetPortfolio() (ledger.Portfolio, error) {
	return s.portfolioRepo.Load()
}

// GetCalculatedPortfolio revalues the whole portfolio against the latest
// prices. Every held (symbol, market) pair is fetched in one parallel
// batch; symbols the oracle cannot resolve fall back to their last stored
// quote inside the valuation engine.
func (s *PortfolioService) GetCalculatedPortfolio(ctx context.Context) (valuation.CalculatedPortfolio, error) {
	p, err := s.portfolioRepo.Load()
	if err != nil {
		return valuation.CalculatedPortfolio{}, err
	}

	prices := s.priceOracle.GetPrices(ctx, heldInstruments(p))
	return valuation.Revalue(p, prices), nil
}

// ExecuteOrder applies one buy, sell or dividend instruction against a
// category and persists the resulting snapshot together with its
// transaction record.
func (s *PortfolioService) ExecuteOrder(ctx context.Context, categoryID string, order ledger.Order) (ledger.Transaction, error) {
	p, err := s.portfolioRepo.Load()
	if err != nil {
		return ledger.Transaction{}, err
	}

	category, ok := p.Category(categoryID)
	if !ok {
		return ledger.Transaction{}, apperrors.ErrCategoryNotFound
	}

	updated, txn, err := ledger.Execute(category, order)
	if err != nil {
		return ledger.Transaction{}, err
	}

	if err := s.portfolioRepo.SaveOrderResult(ctx, updated, txn); err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to persist order: %w", err)
	}

	return txn, nil
}

// SetAllocation replaces a category's target percentage of total capital.
func (s *PortfolioService) SetAllocation(ctx context.Context, categoryID string, percent float64) error {
	if percent < 0 || percent > 100 {
		return apperrors.ErrInvalidAllocation
	}

	err := s.portfolioRepo.UpdateAllocation(ctx, categoryID, percent)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrCategoryNotFound
	}
	return err
}

// RecordCapital appends a deposit or withdrawal to the capital log and
// returns the created entry together with the new folded total.
func (s *PortfolioService) RecordCapital(ctx context.Context, entryType ledger.CapitalEntryType, amount float64) (ledger.CapitalLogEntry, float64, error) {
	p, err := s.portfolioRepo.Load()
	if err != nil {
		return ledger.CapitalLogEntry{}, 0, err
	}

	updated, entry, err := ledger.RecordCapital(p, entryType, amount, time.Now().UTC())
	if err != nil {
		return ledger.CapitalLogEntry{}, 0, err
	}

	if err := s.capitalRepo.InsertEntry(ctx, entry); err != nil {
		return ledger.CapitalLogEntry{}, 0, err
	}

	return entry, updated.TotalCapital(), nil
}

// GetCapitalLog returns the capital log with the derived running total.
func (s *PortfolioService) GetCapitalLog() ([]ledger.CapitalLogEntry, float64, error) {
	entries, err := s.capitalRepo.GetEntries()
	if err != nil {
		return nil, 0, err
	}
	return entries, ledger.TotalCapital(entries), nil
}

// ExportBackup encodes the stored portfolio as a backup document and
// returns the payload with its conventional filename.
func (s *PortfolioService) ExportBackup() ([]byte, string, error) {
	p, err := s.portfolioRepo.Load()
	if err != nil {
		return nil, "", err
	}
	data, err := snapshot.Export(p)
	if err != nil {
		return nil, "", err
	}
	return data, snapshot.Filename(time.Now()), nil
}

// ImportBackup validates a backup document and replaces the stored state
// with it. A payload that fails validation leaves the store untouched.
func (s *PortfolioService) ImportBackup(ctx context.Context, data []byte) error {
	p, err := snapshot.Import(data)
	if err != nil {
		return err
	}
	return s.portfolioRepo.Replace(ctx, p)
}

// heldInstruments collects the unique quotable holdings across categories.
func heldInstruments(p ledger.Portfolio) []oracle.Instrument {
	var instruments []oracle.Instrument
	for _, c := range p.Categories {
		for _, a := range c.Assets {
			instruments = append(instruments, oracle.Instrument{
				Symbol: a.Symbol,
				Market: c.Market,
			})
		}
	}
	return instruments
}
