package oracle

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
)

// maxNewsItems caps how many headlines one lookup returns.
const maxNewsItems = 5

// minFeedLength is the plausibility floor for a feed payload. Relay error
// pages are typically shorter than any real feed.
const minFeedLength = 64

// GetNews fetches recent headlines for an instrument, newest first, capped
// at maxNewsItems. The optional display name widens the query. Best-effort:
// on total failure the result is an empty slice, never an error.
func (o *Oracle) GetNews(ctx context.Context, symbol string, market ledger.Market, name string) []NewsItem {
	query := symbol
	if name != "" {
		query = symbol + " " + name
	}

	locale := "hl=en-US&gl=US&ceid=US:en"
	if market == ledger.MarketTW {
		locale = "hl=zh-TW&gl=TW&ceid=TW:zh-Hant"
	}
	target := fmt.Sprintf("%s/rss/search?q=%s&%s", o.newsBase, url.QueryEscape(query), locale)

	for _, relay := range o.relays {
		body, err := o.fetch(ctx, relay(target))
		if err != nil {
			continue
		}
		items, err := parseFeed(body)
		if err != nil {
			continue
		}
		return items
	}
	return []NewsItem{}
}

// parseFeed validates and parses an RSS payload. The payload must look
// plausibly like a feed (non-trivial length, an rss root element) before
// any XML parsing is attempted; relays sometimes answer 200 with an HTML
// error page.
func parseFeed(body []byte) ([]NewsItem, error) {
	if len(body) < minFeedLength {
		return nil, fmt.Errorf("payload too short to be a feed")
	}
	if !strings.Contains(string(body[:min(len(body), 256)]), "<rss") {
		return nil, fmt.Errorf("payload is not an rss feed")
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, err
	}

	items := make([]NewsItem, 0, len(feed.Channel.Items))
	for _, it := range feed.Channel.Items {
		published, err := parsePubDate(it.PubDate)
		if err != nil {
			continue
		}
		items = append(items, NewsItem{
			Title:       stripSourceSuffix(it.Title),
			Link:        it.Link,
			Source:      it.Source,
			PublishedAt: published,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if len(items) > maxNewsItems {
		items = items[:maxNewsItems]
	}
	return items, nil
}

func parsePubDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized pubDate %q", s)
}

// stripSourceSuffix removes the trailing " - Source" attribution aggregators
// append to headline titles.
func stripSourceSuffix(title string) string {
	if idx := strings.LastIndex(title, " - "); idx > 0 {
		return strings.TrimSpace(title[:idx])
	}
	return title
}
