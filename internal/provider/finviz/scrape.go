package finviz

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/marketbrief/internal/brief"
	"github.com/wonny/marketbrief/internal/quote"
)

// Overview-view column order of the public screener table
const (
	scrapeColTicker    = 1
	scrapeColMarketCap = 6
	scrapeColPrice     = 8
	scrapeColChange    = 9
	scrapeColVolume    = 10
)

// scrape fetches the public screener page and parses its result table
func (c *Client) scrape(ctx context.Context) ([]quote.Quote, error) {
	params := url.Values{}
	params.Set("v", "111") // overview view
	params.Set("o", "-change")
	if filters := c.filters(); len(filters) > 0 {
		params.Set("f", strings.Join(filters, ","))
	}

	pageURL := fmt.Sprintf("%s?%s", c.scrapeURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &brief.ProviderError{Provider: providerName, Op: "scrape", Err: err}
	}
	// The public site rejects requests without a browser user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, &brief.ProviderError{Provider: providerName, Op: "scrape", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &brief.ProviderError{
			Provider: providerName,
			Op:       "scrape",
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &brief.ProviderError{Provider: providerName, Op: "scrape", Err: fmt.Errorf("parse HTML: %w", err)}
	}

	quotes := parseScreenerDoc(doc)

	c.logger.WithField("quotes", len(quotes)).Info("Screener scrape completed")

	return quotes, nil
}

// parseScreenerDoc extracts quotes from the screener result table
func parseScreenerDoc(doc *goquery.Document) []quote.Quote {
	var quotes []quote.Quote

	doc.Find("table.screener_table tr, table.table-light tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= scrapeColVolume {
			return
		}

		ticker := strings.TrimSpace(cells.Eq(scrapeColTicker).Text())
		if ticker == "" || !isTicker(ticker) {
			return // header or spacer row
		}

		quotes = append(quotes, quote.Quote{
			Symbol:        ticker,
			Price:         parseDecimalString(cells.Eq(scrapeColPrice).Text()),
			MarketCap:     parseDecimalString(cells.Eq(scrapeColMarketCap).Text()),
			PercentChange: parseDecimalString(cells.Eq(scrapeColChange).Text()),
			Volume:        parseDecimalString(cells.Eq(scrapeColVolume).Text()).IntPart(),
		})
	})

	return quotes
}

// isTicker reports whether s looks like a stock symbol (filters out the
// "Ticker" header cell and company-name cells)
func isTicker(s string) bool {
	if len(s) == 0 || len(s) > 6 {
		return false
	}
	if s == strings.ToLower(s) && s != strings.ToUpper(s) {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '.' && r != '-' {
			return false
		}
	}
	return true
}
