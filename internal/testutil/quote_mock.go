package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/oracle"
)

// ChartJSON builds a minimal chart API response carrying one quote.
func ChartJSON(price float64) string {
	return fmt.Sprintf(
		`{"chart":{"result":[{"meta":{"regularMarketPrice":%g,"previousClose":%g}}],"error":null}}`,
		price, price,
	)
}

// SearchJSON builds a minimal instrument search response. Entries are
// (symbol, name, quoteType) triples.
func SearchJSON(quotes ...[3]string) string {
	var parts []string
	for _, q := range quotes {
		parts = append(parts, fmt.Sprintf(
			`{"symbol":%q,"longname":%q,"quoteType":%q}`, q[0], q[1], q[2]))
	}
	return `{"quotes":[` + strings.Join(parts, ",") + `]}`
}

// RSSFeed builds an RSS payload with one item per (title, pubDate) pair.
func RSSFeed(items ...[2]string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>test feed</title>`)
	for _, it := range items {
		fmt.Fprintf(&b,
			`<item><title>%s</title><link>https://example.com/a</link><pubDate>%s</pubDate><source>Example</source></item>`,
			it[0], it[1])
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

// RSSDate formats a time the way feed pubDate fields carry it.
func RSSDate(t time.Time) string {
	return t.Format(time.RFC1123Z)
}

// QuoteServer is an httptest server pretending to be every quote provider
// at once: the JSON chart API, the HTML quote page, instrument search and
// the news feed. Symbols not in Prices answer 404 so the fallback chain
// advances.
type QuoteServer struct {
	*httptest.Server

	// Prices maps venue-qualified symbols (e.g. "2330.TW", "AAPL") to quotes.
	Prices map[string]float64
	// SearchBody and NewsBody are returned verbatim when set.
	SearchBody string
	NewsBody   string

	hits atomic.Int64
}

// NewQuoteServer starts a mock provider and registers its shutdown with the test.
func NewQuoteServer(t *testing.T, prices map[string]float64) *QuoteServer {
	t.Helper()

	qs := &QuoteServer{Prices: prices}
	qs.Server = httptest.NewServer(http.HandlerFunc(qs.handle))
	t.Cleanup(qs.Server.Close)
	return qs
}

// Hits reports how many requests the server has answered.
func (qs *QuoteServer) Hits() int64 {
	return qs.hits.Load()
}

func (qs *QuoteServer) handle(w http.ResponseWriter, r *http.Request) {
	qs.hits.Add(1)

	switch {
	case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"):
		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		price, ok := qs.Prices[symbol]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, ChartJSON(price))

	case strings.HasPrefix(r.URL.Path, "/quote/"):
		symbol := strings.TrimPrefix(r.URL.Path, "/quote/")
		price, ok := qs.Prices[symbol]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<html><body><fin-streamer data-field="regularMarketPrice" value="%g"></fin-streamer></body></html>`, price)

	case strings.HasPrefix(r.URL.Path, "/v1/finance/search"):
		if qs.SearchBody == "" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, qs.SearchBody)

	case strings.HasPrefix(r.URL.Path, "/rss/search"):
		if qs.NewsBody == "" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, qs.NewsBody)

	default:
		http.NotFound(w, r)
	}
}

// NewTestOracle builds an oracle wired to the mock provider through an
// identity relay, with a fresh cache using the given TTL.
func NewTestOracle(t *testing.T, qs *QuoteServer, ttl time.Duration) (*oracle.Oracle, *oracle.Cache) {
	t.Helper()

	cache := oracle.NewCache(ttl)
	o := oracle.New(cache,
		oracle.WithRelays([]oracle.Relay{func(target string) string { return target }}),
		oracle.WithProviderBases(qs.URL, qs.URL, qs.URL, qs.URL),
		oracle.WithAttemptTimeout(2*time.Second),
	)
	return o, cache
}
