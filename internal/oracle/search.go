package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
)

// SearchInstruments looks up instrument candidates for a free-text query on
// one market. Best-effort: exhausting every relay yields an empty slice,
// never an error visible to the caller.
//
// Candidates are filtered to equities and ETFs, and to the venue suffixes
// of the requested market: .TW/.TWO symbols for TW, unsuffixed for US.
func (o *Oracle) SearchInstruments(ctx context.Context, query string, market ledger.Market) []SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	target := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=10&newsCount=0",
		o.searchBase, url.QueryEscape(query))

	for _, relay := range o.relays {
		body, err := o.fetch(ctx, relay(target))
		if err != nil {
			continue
		}
		results, err := parseSearch(body, market)
		if err != nil {
			continue
		}
		return results
	}
	return []SearchResult{}
}

func parseSearch(body []byte, market ledger.Market) ([]SearchResult, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		if q.QuoteType != "EQUITY" && q.QuoteType != "ETF" {
			continue
		}
		if !matchesMarket(q.Symbol, market) {
			continue
		}

		name := q.Longname
		if name == "" {
			name = q.Shortname
		}

		results = append(results, SearchResult{
			Symbol:    trimVenueSuffix(q.Symbol, market),
			Name:      name,
			QuoteType: q.QuoteType,
		})
	}
	return results, nil
}

func matchesMarket(symbol string, market ledger.Market) bool {
	tw := strings.HasSuffix(symbol, ".TW") || strings.HasSuffix(symbol, ".TWO")
	if market == ledger.MarketTW {
		return tw
	}
	return !strings.Contains(symbol, ".")
}

// trimVenueSuffix strips .TW/.TWO so ledger symbols stay venue-neutral; the
// quote chain re-applies suffixes when fetching.
func trimVenueSuffix(symbol string, market ledger.Market) string {
	if market != ledger.MarketTW {
		return symbol
	}
	symbol = strings.TrimSuffix(symbol, ".TWO")
	symbol = strings.TrimSuffix(symbol, ".TW")
	return symbol
}
