package oracle

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
)

// Provider base URLs. Tests override these per oracle instance.
const (
	defaultQuoteBase  = "https://query1.finance.yahoo.com"
	defaultScrapeBase = "https://finance.yahoo.com"
	defaultSearchBase = "https://query2.finance.yahoo.com"
	defaultNewsBase   = "https://news.google.com"
)

// scrapePricePattern extracts the regular market price from the quote page
// HTML, e.g. `data-field="regularMarketPrice" ... value="189.84"`. This is
// the documented fallback for US quotes when the JSON API is unavailable
// through every relay.
var scrapePricePattern = regexp.MustCompile(`data-field="regularMarketPrice"[^>]*value="([0-9][0-9.,]*)"`)

// quoteAttempt is one provider strategy: build a URL, parse a price out of
// whatever comes back, or fail so the chain advances.
type quoteAttempt struct {
	url   string
	parse func(body []byte) (float64, error)
}

// quoteAttempts returns the provider chain for a symbol, in priority order.
//
// TW symbols may list on the primary exchange or on the OTC exchange, so
// both venue suffixes are tried in sequence. US symbols prefer the JSON
// chart API with an HTML scrape of the quote page as last resort.
func (o *Oracle) quoteAttempts(symbol string, market ledger.Market) []quoteAttempt {
	if market == ledger.MarketTW {
		return []quoteAttempt{
			{url: o.chartURL(symbol + ".TW"), parse: parseChartPrice},
			{url: o.chartURL(symbol + ".TWO"), parse: parseChartPrice},
		}
	}
	return []quoteAttempt{
		{url: o.chartURL(symbol), parse: parseChartPrice},
		{url: fmt.Sprintf("%s/quote/%s", o.scrapeBase, symbol), parse: parseScrapedPrice},
	}
}

// chartURL builds the JSON quote endpoint for one venue-qualified symbol.
func (o *Oracle) chartURL(symbol string) string {
	return fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", o.quoteBase, symbol)
}

// parseScrapedPrice applies scrapePricePattern to a quote page body.
func parseScrapedPrice(body []byte) (float64, error) {
	m := scrapePricePattern.FindSubmatch(body)
	if m == nil {
		return 0, fmt.Errorf("price pattern not found in page")
	}
	price, err := strconv.ParseFloat(stripThousands(string(m[1])), 64)
	if err != nil {
		return 0, err
	}
	return price, nil
}

func stripThousands(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != ',' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
