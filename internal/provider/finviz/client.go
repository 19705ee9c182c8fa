package finviz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/wonny/marketbrief/internal/brief"
	"github.com/wonny/marketbrief/internal/quote"
	"github.com/wonny/marketbrief/pkg/config"
	"github.com/wonny/marketbrief/pkg/httputil"
	"github.com/wonny/marketbrief/pkg/logger"
)

const providerName = "finviz"

// Client fetches screened stocks from the Finviz screener.
// With a RapidAPI key it uses the hosted screener API; without one it
// falls back to scraping the public screener table.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger

	apiKey    string
	apiHost   string
	baseURL   string
	scrapeURL string

	minMarketCap int64
	minVolume    int64
}

// NewClient creates a new Finviz client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient:   httpClient,
		logger:       log,
		apiKey:       cfg.Finviz.APIKey,
		apiHost:      cfg.Finviz.APIHost,
		baseURL:      cfg.Finviz.BaseURL,
		scrapeURL:    cfg.Finviz.ScrapeURL,
		minMarketCap: cfg.Report.MinMarketCap,
		minVolume:    cfg.Report.MinVolume,
	}
}

// tableResponse is the screener API payload. Rows are positional arrays
// of mixed string/number cells.
type tableResponse struct {
	Rows [][]interface{} `json:"rows"`
}

// Row layout of the screener table
const (
	colTicker    = 1
	colPrice     = 2
	colMarketCap = 6
	colVolume    = 7
	colRelVolume = 8
	colChange    = 9
)

// Screen fetches the screened stock list. An empty result is not an
// error; a day where nothing qualifies is a legal outcome.
func (c *Client) Screen(ctx context.Context) ([]quote.Quote, error) {
	if c.apiKey == "" {
		c.logger.Warn("No RapidAPI key configured, using public screener scrape")
		return c.scrape(ctx)
	}
	return c.screenAPI(ctx)
}

// screenAPI queries the hosted screener API
func (c *Client) screenAPI(ctx context.Context) ([]quote.Quote, error) {
	params := url.Values{}
	params.Set("order", "change")
	params.Set("desc", "true")
	for _, f := range c.filters() {
		params.Add("filters", f)
	}

	apiURL := fmt.Sprintf("%s/table?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &brief.ProviderError{Provider: providerName, Op: "screen", Err: err}
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, &brief.ProviderError{Provider: providerName, Op: "screen", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &brief.ProviderError{
			Provider: providerName,
			Op:       "screen",
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var table tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, &brief.ProviderError{Provider: providerName, Op: "screen", Err: fmt.Errorf("decode response: %w", err)}
	}

	quotes, err := parseRows(table.Rows)
	if err != nil {
		return nil, &brief.ProviderError{Provider: providerName, Op: "screen", Err: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"rows":   len(table.Rows),
		"quotes": len(quotes),
	}).Info("Screener fetch completed")

	return quotes, nil
}

// filters maps the configured thresholds onto screener filter codes
func (c *Client) filters() []string {
	filters := make([]string, 0, 2)

	switch {
	case c.minMarketCap >= 10_000_000_000:
		filters = append(filters, "cap_largeover")
	case c.minMarketCap >= 2_000_000_000:
		filters = append(filters, "cap_midover")
	case c.minMarketCap >= 300_000_000:
		filters = append(filters, "cap_smallover")
	case c.minMarketCap > 0:
		filters = append(filters, "cap_microover")
	}

	// Volume filter codes are in thousands of shares
	switch {
	case c.minVolume >= 1_000_000:
		filters = append(filters, "sh_curvol_o1000")
	case c.minVolume >= 500_000:
		filters = append(filters, "sh_curvol_o500")
	case c.minVolume >= 100_000:
		filters = append(filters, "sh_curvol_o100")
	case c.minVolume > 0:
		filters = append(filters, "sh_curvol_o50")
	}

	return filters
}

// parseRows converts positional table rows into quotes.
// Rows that are too short or have an empty ticker are skipped.
func parseRows(rows [][]interface{}) ([]quote.Quote, error) {
	quotes := make([]quote.Quote, 0, len(rows))

	for _, row := range rows {
		if len(row) <= colChange {
			continue
		}

		ticker := toString(row[colTicker])
		if ticker == "" {
			continue
		}

		quotes = append(quotes, quote.Quote{
			Symbol:         ticker,
			Price:          toDecimal(row[colPrice]),
			MarketCap:      toDecimal(row[colMarketCap]),
			Volume:         toInt64(row[colVolume]),
			RelativeVolume: toDecimal(row[colRelVolume]),
			PercentChange:  toDecimal(row[colChange]),
		})
	}

	return quotes, nil
}
