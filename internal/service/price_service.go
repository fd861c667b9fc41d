package service

import (
	"context"
	"log"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
	"github.com/twinvest/portfolio-ledger-backend/internal/oracle"
	"github.com/twinvest/portfolio-ledger-backend/internal/repository"
)

// PriceService exposes the oracle to the API layer and runs the periodic
// refresh of every held symbol plus the USD exchange rate.
type PriceService struct {
	portfolioRepo *repository.PortfolioRepository
	priceOracle   *oracle.Oracle
}

// NewPriceService creates a new PriceService with the provided dependencies.
func NewPriceService(portfolioRepo *repository.PortfolioRepository, priceOracle *oracle.Oracle) *PriceService {
	return &PriceService{
		portfolioRepo: portfolioRepo,
		priceOracle:   priceOracle,
	}
}

// GetPrice resolves one quote through the oracle's cache and fallback chain.
func (s *PriceService) GetPrice(ctx context.Context, symbol string, market ledger.Market) (float64, error) {
	return s.priceOracle.GetPrice(ctx, symbol, market)
}

// SearchInstruments looks up instrument candidates for a query.
func (s *PriceService) SearchInstruments(ctx context.Context, query string, market ledger.Market) []oracle.SearchResult {
	return s.priceOracle.SearchInstruments(ctx, query, market)
}

// GetNews fetches recent headlines for an instrument, best-effort.
func (s *PriceService) GetNews(ctx context.Context, symbol string, market ledger.Market, name string) []oracle.NewsItem {
	return s.priceOracle.GetNews(ctx, symbol, market, name)
}

// RefreshAll re-fetches quotes for every held symbol and the USD-to-TWD
// rate, storing what it gets. Individual failures are logged and skipped;
// the stored quote simply stays at its last known value.
//
// Called by the cron schedule and by the manual refresh endpoint.
func (s *PriceService) RefreshAll(ctx context.Context) error {
	p, err := s.portfolioRepo.Load()
	if err != nil {
		return err
	}

	prices := s.priceOracle.GetPrices(ctx, heldInstruments(p))
	for symbol, price := range prices {
		if err := s.portfolioRepo.UpdateAssetPrice(ctx, symbol, price); err != nil {
			log.Printf("price refresh: failed to store %s: %v", symbol, err)
		}
	}

	if rate, err := s.priceOracle.ExchangeRate(ctx, "USD", "TWD"); err == nil {
		if err := s.portfolioRepo.UpdateExchangeRate(ctx, rate); err != nil {
			log.Printf("price refresh: failed to store exchange rate: %v", err)
		}
	}

	return nil
}
