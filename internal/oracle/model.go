package oracle

import (
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
)

// Instrument identifies one quotable holding for a batch fetch.
type Instrument struct {
	Symbol string        `json:"symbol"`
	Market ledger.Market `json:"market"`
}

// SearchResult is one instrument candidate returned by a symbol search.
type SearchResult struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	QuoteType string `json:"quoteType"`
}

// NewsItem is one headline for a held instrument, newest first.
type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
}

// chartResponse mirrors the quote provider's JSON shape:
// { chart: { result: [{ meta: { regularMarketPrice, previousClose } }] } }.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
			} `json:"meta"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// searchResponse mirrors the search provider's JSON shape:
// { quotes: [{ symbol, quoteType, shortname, longname }] }.
type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		QuoteType string `json:"quoteType"`
		Shortname string `json:"shortname"`
		Longname  string `json:"longname"`
	} `json:"quotes"`
}

// rssFeed mirrors the news feed's XML shape: item > title|link|pubDate|source.
type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Source  string `xml:"source"`
}
