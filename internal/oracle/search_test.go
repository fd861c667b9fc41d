package oracle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
)

func TestSearchInstruments(t *testing.T) {
	ctx := context.Background()

	searchPayload := `{"quotes":[
		{"symbol":"2330.TW","longname":"Taiwan Semiconductor","quoteType":"EQUITY"},
		{"symbol":"6488.TWO","shortname":"GlobalWafers","quoteType":"EQUITY"},
		{"symbol":"TSM","longname":"Taiwan Semiconductor ADR","quoteType":"EQUITY"},
		{"symbol":"0050.TW","longname":"Yuanta Taiwan 50","quoteType":"ETF"},
		{"symbol":"TSMF","longname":"Some Future","quoteType":"FUTURE"}
	]}`

	newSearchServer := func(t *testing.T, body string) *httptest.Server {
		t.Helper()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))
		t.Cleanup(srv.Close)
		return srv
	}

	t.Run("TW search keeps only venue-suffixed equities and ETFs", func(t *testing.T) {
		srv := newSearchServer(t, searchPayload)
		o := newTestOracle(srv, time.Minute)

		results := o.SearchInstruments(ctx, "tsmc", ledger.MarketTW)

		if len(results) != 3 {
			t.Fatalf("Expected 3 results, got %d: %+v", len(results), results)
		}
		if results[0].Symbol != "2330" {
			t.Errorf("Expected venue suffix stripped, got %q", results[0].Symbol)
		}
		if results[1].Symbol != "6488" {
			t.Errorf("Expected .TWO suffix stripped, got %q", results[1].Symbol)
		}
		if results[1].Name != "GlobalWafers" {
			t.Errorf("Expected short name fallback, got %q", results[1].Name)
		}
	})

	t.Run("US search keeps only unsuffixed symbols", func(t *testing.T) {
		srv := newSearchServer(t, searchPayload)
		o := newTestOracle(srv, time.Minute)

		results := o.SearchInstruments(ctx, "tsmc", ledger.MarketUS)

		if len(results) != 1 || results[0].Symbol != "TSM" {
			t.Fatalf("Expected only TSM, got %+v", results)
		}
	})

	t.Run("blank query returns nothing without a fetch", func(t *testing.T) {
		srv := newSearchServer(t, searchPayload)
		o := newTestOracle(srv, time.Minute)

		if results := o.SearchInstruments(ctx, "   ", ledger.MarketTW); len(results) != 0 {
			t.Errorf("Expected no results, got %+v", results)
		}
	})

	t.Run("provider failure yields an empty slice, not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)
		o := newTestOracle(srv, time.Minute)

		results := o.SearchInstruments(ctx, "tsmc", ledger.MarketTW)
		if results == nil || len(results) != 0 {
			t.Errorf("Expected empty slice, got %+v", results)
		}
	})
}
