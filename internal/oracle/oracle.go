// Package oracle fetches market prices, symbol candidates and headlines
// from redundant external providers. Every external need has an ordered
// fallback chain; a single hung or broken endpoint degrades the answer,
// never the caller. Quotes are served through an injected TTL cache with a
// stale-but-available fallback.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
)

// DefaultAttemptTimeout bounds each individual fetch attempt. A hung relay
// costs at most this long before the chain advances.
const DefaultAttemptTimeout = 5 * time.Second

// Oracle resolves prices, searches and news through relay/provider chains.
type Oracle struct {
	client         *http.Client
	cache          *Cache
	relays         []Relay
	attemptTimeout time.Duration

	quoteBase  string
	scrapeBase string
	searchBase string
	newsBase   string
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithHTTPClient replaces the HTTP client, used by tests to point the
// oracle at a local server.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Oracle) { o.client = c }
}

// WithRelays replaces the relay chain.
func WithRelays(relays []Relay) Option {
	return func(o *Oracle) { o.relays = relays }
}

// WithAttemptTimeout replaces the per-attempt timeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *Oracle) { o.attemptTimeout = d }
}

// WithProviderBases replaces the provider base URLs, used by tests to
// point every provider at a local server. Empty strings keep the default.
func WithProviderBases(quote, scrape, search, news string) Option {
	return func(o *Oracle) {
		if quote != "" {
			o.quoteBase = quote
		}
		if scrape != "" {
			o.scrapeBase = scrape
		}
		if search != "" {
			o.searchBase = search
		}
		if news != "" {
			o.newsBase = news
		}
	}
}

// New creates an oracle backed by the given cache.
func New(cache *Cache, opts ...Option) *Oracle {
	o := &Oracle{
		client:         &http.Client{},
		cache:          cache,
		relays:         DefaultRelays(),
		attemptTimeout: DefaultAttemptTimeout,
		quoteBase:      defaultQuoteBase,
		scrapeBase:     defaultScrapeBase,
		searchBase:     defaultSearchBase,
		newsBase:       defaultNewsBase,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetPrice returns the current price for a symbol on a market.
//
// Resolution order: fresh cache hit, then every (provider, relay)
// combination in priority order, then the stale cache. Only when all of
// those come up empty does it fail with apperrors.ErrPriceNotFound.
func (o *Oracle) GetPrice(ctx context.Context, symbol string, market ledger.Market) (float64, error) {
	if price, ok := o.cache.Get(symbol, market); ok {
		return price, nil
	}

	for _, attempt := range o.quoteAttempts(symbol, market) {
		for _, relay := range o.relays {
			body, err := o.fetch(ctx, relay(attempt.url))
			if err != nil {
				continue
			}
			price, err := attempt.parse(body)
			if err != nil || price <= 0 {
				continue
			}
			o.cache.Set(symbol, market, price)
			return price, nil
		}
	}

	// Stale beats nothing.
	if price, ok := o.cache.GetStale(symbol, market); ok {
		return price, nil
	}
	return 0, apperrors.ErrPriceNotFound
}

// GetPrices fetches all unique (symbol, market) pairs in parallel and
// returns the prices keyed by symbol. Instruments that resolve to no price
// at all are simply absent from the result. The call returns only once
// every fetch has resolved; one slow instrument delays the join but never
// blocks the others from being cached.
func (o *Oracle) GetPrices(ctx context.Context, instruments []Instrument) map[string]float64 {
	unique := make(map[string]Instrument, len(instruments))
	for _, in := range instruments {
		unique[cacheKey(in.Symbol, in.Market)] = in
	}

	var mu sync.Mutex
	prices := make(map[string]float64, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	for _, in := range unique {
		in := in
		g.Go(func() error {
			price, err := o.GetPrice(gctx, in.Symbol, in.Market)
			if err != nil {
				return nil // absent from the result, never fatal
			}
			mu.Lock()
			prices[in.Symbol] = price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // goroutines always return nil

	return prices
}

// ExchangeRate quotes how many units of the quote currency one unit of the
// base currency buys, e.g. ExchangeRate(ctx, "USD", "TWD"). Identical
// currencies rate 1 without a fetch.
func (o *Oracle) ExchangeRate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	pair := from + to + "=X"

	if rate, ok := o.cache.Get(pair, ledger.MarketUS); ok {
		return rate, nil
	}

	target := o.chartURL(pair)
	for _, relay := range o.relays {
		body, err := o.fetch(ctx, relay(target))
		if err != nil {
			continue
		}
		rate, err := parseChartPrice(body)
		if err != nil || rate <= 0 {
			continue
		}
		o.cache.Set(pair, ledger.MarketUS, rate)
		return rate, nil
	}

	if rate, ok := o.cache.GetStale(pair, ledger.MarketUS); ok {
		return rate, nil
	}
	return 0, apperrors.ErrPriceNotFound
}

// fetch performs one bounded HTTP attempt and returns the raw body.
// Timeouts, non-2xx responses and read failures all surface as errors so
// the caller silently advances to the next relay/provider combination.
func (o *Oracle) fetch(ctx context.Context, url string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json, text/html, application/xml")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// parseChartPrice extracts the regular market price from a chart payload,
// falling back to the previous close when the live price is absent.
func parseChartPrice(body []byte) (float64, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, err
	}
	if len(resp.Chart.Result) == 0 {
		return 0, fmt.Errorf("empty chart result")
	}
	meta := resp.Chart.Result[0].Meta
	if meta.RegularMarketPrice > 0 {
		return meta.RegularMarketPrice, nil
	}
	if meta.PreviousClose > 0 {
		return meta.PreviousClose, nil
	}
	return 0, fmt.Errorf("no usable price in chart meta")
}
