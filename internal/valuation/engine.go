// Package valuation derives market value, cost basis, realized and
// unrealized profit-and-loss and allocation utilization from the ledger
// state and a price snapshot. Revalue is a pure function: it never fails
// and never touches its inputs.
package valuation

import (
	"math"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
)

// RoundingPrecision is the factor used to round rates and monetary
// aggregates to two decimal places.
const RoundingPrecision = 100

// PriceSnapshot maps a symbol to its latest known market price in the
// instrument's native currency. A missing symbol means no fresh quote is
// available; valuation then falls back to the position's last stored price.
type PriceSnapshot map[string]float64

// CalculatedAsset is an asset position enriched with derived figures.
// Cost basis is computed per lot with each lot's own historical exchange
// rate, while market value applies the current rate uniformly to all live
// shares. The asymmetry is policy, not a bug: it isolates exchange-rate
// movement since purchase as part of unrealized PnL.
type CalculatedAsset struct {
	ledger.AssetPosition
	CostBasis      float64 `json:"costBasis"`
	MarketValue    float64 `json:"marketValue"`
	UnrealizedPnL  float64 `json:"unrealizedPnL"`
	ReturnRate     float64 `json:"returnRate"`
	PortfolioRatio float64 `json:"portfolioRatio"`
	RealizedPnL    float64 `json:"realizedPnL"`
}

// CalculatedCategory is a category enriched with allocation figures.
// RemainingCash may be negative: over-allocation is a reportable state.
type CalculatedCategory struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Market              ledger.Market     `json:"market"`
	AllocationPercent   float64           `json:"allocationPercent"`
	Assets              []CalculatedAsset `json:"assets"`
	ProjectedInvestment float64           `json:"projectedInvestment"`
	InvestedAmount      float64           `json:"investedAmount"`
	RemainingCash       float64           `json:"remainingCash"`
	InvestmentRatio     float64           `json:"investmentRatio"`
	MarketValue         float64           `json:"marketValue"`
	UnrealizedPnL       float64           `json:"unrealizedPnL"`
	RealizedPnL         float64           `json:"realizedPnL"`
}

// CalculatedPortfolio is the full derived view consumed by renderers.
type CalculatedPortfolio struct {
	TotalCapital       float64              `json:"totalCapital"`
	Categories         []CalculatedCategory `json:"categories"`
	TotalMarketValue   float64              `json:"totalMarketValue"`
	TotalCostBasis     float64              `json:"totalCostBasis"`
	TotalUnrealizedPnL float64              `json:"totalUnrealizedPnL"`
	TotalRealizedPnL   float64              `json:"totalRealizedPnL"`
	TotalNetWorth      float64              `json:"totalNetWorth"`
}

// Revalue recomputes every derived figure for the portfolio from the lot
// store, the immutable transaction log and the given price snapshot.
//
// Division-by-zero conditions are defined to yield 0: a projected
// investment of 0 gives an investment ratio of 0, a zero cost basis gives
// a return rate of 0. A symbol missing from the snapshot is valued at the
// position's last known price, so a failed price fetch degrades the view
// instead of breaking it.
func Revalue(p ledger.Portfolio, prices PriceSnapshot) CalculatedPortfolio {
	totalCapital := p.TotalCapital()

	realizedByAsset := make(map[string]float64)
	realizedByCategory := make(map[string]float64)
	var totalRealized float64
	for _, t := range p.Transactions {
		realizedByAsset[t.AssetID] += t.RealizedPnL
		realizedByCategory[t.CategoryName] += t.RealizedPnL
		totalRealized += t.RealizedPnL
	}

	out := CalculatedPortfolio{
		TotalCapital:     round2(totalCapital),
		Categories:       make([]CalculatedCategory, len(p.Categories)),
		TotalRealizedPnL: round2(totalRealized),
	}

	for i, cat := range p.Categories {
		calc := CalculatedCategory{
			ID:                  cat.ID,
			Name:                cat.Name,
			Market:              cat.Market,
			AllocationPercent:   cat.AllocationPercent,
			Assets:              make([]CalculatedAsset, len(cat.Assets)),
			ProjectedInvestment: math.Floor(totalCapital * cat.AllocationPercent / 100),
			RealizedPnL:         round2(realizedByCategory[cat.Name]),
		}

		for j, asset := range cat.Assets {
			ca := revalueAsset(asset, cat.Market, p.Settings, prices)
			ca.RealizedPnL = round2(realizedByAsset[asset.ID])
			calc.Assets[j] = ca

			calc.InvestedAmount += ca.CostBasis
			calc.MarketValue += ca.MarketValue
			calc.UnrealizedPnL += ca.UnrealizedPnL
		}

		calc.RemainingCash = calc.ProjectedInvestment - calc.InvestedAmount
		if calc.ProjectedInvestment > 0 {
			calc.InvestmentRatio = round2(calc.InvestedAmount / calc.ProjectedInvestment * 100)
		}

		calc.InvestedAmount = round2(calc.InvestedAmount)
		calc.MarketValue = round2(calc.MarketValue)
		calc.RemainingCash = round2(calc.RemainingCash)

		out.TotalCostBasis += calc.InvestedAmount
		out.TotalMarketValue += calc.MarketValue
		out.TotalUnrealizedPnL += calc.UnrealizedPnL
		out.Categories[i] = calc
	}

	out.TotalCostBasis = round2(out.TotalCostBasis)
	out.TotalMarketValue = round2(out.TotalMarketValue)
	out.TotalUnrealizedPnL = round2(out.TotalUnrealizedPnL)
	out.TotalNetWorth = round2(totalCapital + totalRealized + out.TotalUnrealizedPnL)

	// Portfolio ratio needs the grand total, so it is a second pass.
	if out.TotalMarketValue > 0 {
		for i := range out.Categories {
			for j := range out.Categories[i].Assets {
				a := &out.Categories[i].Assets[j]
				a.PortfolioRatio = round2(a.MarketValue / out.TotalMarketValue * 100)
			}
		}
	}

	return out
}

// revalueAsset computes the per-asset figures. The current exchange rate
// applies uniformly to all live shares regardless of each lot's historical
// rate; the historical rates only enter the cost basis.
func revalueAsset(asset ledger.AssetPosition, market ledger.Market, settings ledger.Settings, prices PriceSnapshot) CalculatedAsset {
	price, ok := prices[asset.Symbol]
	if !ok || price <= 0 {
		price = asset.CurrentPrice
	}

	rate := 1.0
	if market == ledger.MarketUS && settings.USExchangeRate > 0 {
		rate = settings.USExchangeRate
	}

	ca := CalculatedAsset{
		AssetPosition: asset,
		CostBasis:     round2(asset.Lots.CostBasis()),
		MarketValue:   round2(asset.Shares * price * rate),
	}
	ca.CurrentPrice = price
	ca.UnrealizedPnL = math.Round(ca.MarketValue - ca.CostBasis)
	if ca.CostBasis > 0 {
		ca.ReturnRate = round2(ca.UnrealizedPnL / ca.CostBasis * 100)
	}
	return ca
}

func round2(v float64) float64 {
	return math.Round(v*RoundingPrecision) / RoundingPrecision
}
