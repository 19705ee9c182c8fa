package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wonny/marketbrief/internal/brief"
	"github.com/wonny/marketbrief/internal/quote"
	"github.com/wonny/marketbrief/internal/report"
	"github.com/wonny/marketbrief/pkg/config"
	"github.com/wonny/marketbrief/pkg/logger"
)

type fakeFetcher struct {
	quotes []quote.Quote
	err    error
}

func (f *fakeFetcher) Screen(ctx context.Context) ([]quote.Quote, error) {
	return f.quotes, f.err
}

type fakeNotifier struct {
	calls int
	err   error
}

func (n *fakeNotifier) Send(ctx context.Context, msg brief.Message) error {
	n.calls++
	return n.err
}

func newTestHandler(fetcher brief.Fetcher, notifier brief.Notifier) *ReportHandler {
	log := logger.NewNop()
	cfg := &config.Config{
		Env: "development",
		Finviz: config.FinvizConfig{
			APIKey: "configured",
		},
		Report: config.ReportConfig{
			Recipients: []string{"a@example.com"},
			Metric:     "volume",
			TopN:       20,
		},
		Schedule: config.ScheduleConfig{
			Cron:     "0 30 15 * * MON-FRI",
			Timezone: "Europe/Stockholm",
		},
	}

	ranker := quote.NewRanker(quote.MetricVolume, cfg.Report.TopN, log)
	formatter := report.NewFormatter(quote.MetricVolume, log)
	runner := brief.NewRunner(fetcher, ranker, formatter, notifier, cfg.Report.Recipients, log)

	return NewReportHandler(runner, fetcher, ranker, nil, cfg, log)
}

func testQuotes(n int) []quote.Quote {
	quotes := make([]quote.Quote, 0, n)
	for i := 0; i < n; i++ {
		quotes = append(quotes, quote.Quote{
			Symbol: fmt.Sprintf("SYM%02d", i),
			Price:  decimal.NewFromFloat(10),
			Volume: int64(100 * (i + 1)),
		})
	}
	return quotes
}

func TestGenerate(t *testing.T) {
	fetcher := &fakeFetcher{quotes: testQuotes(3)}
	notifier := &fakeNotifier{}
	h := newTestHandler(fetcher, notifier)

	req := httptest.NewRequest(http.MethodPost, "/api/report/generate", nil)
	w := httptest.NewRecorder()

	h.Generate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp GenerateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Status != "sent" {
		t.Errorf("Expected status sent, got %s", resp.Status)
	}
	if resp.Result == nil || !resp.Result.Notified {
		t.Errorf("Expected notified result, got %+v", resp.Result)
	}
	if notifier.calls != 1 {
		t.Errorf("Expected 1 delivery, got %d", notifier.calls)
	}
}

func TestGenerate_FetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: &brief.ProviderError{Provider: "finviz", Op: "screen", Status: 401, Err: fmt.Errorf("bad key")}}
	notifier := &fakeNotifier{}
	h := newTestHandler(fetcher, notifier)

	req := httptest.NewRequest(http.MethodPost, "/api/report/generate", nil)
	w := httptest.NewRecorder()

	h.Generate(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp["stage"] != "fetch" {
		t.Errorf("Expected stage fetch, got %v", resp["stage"])
	}
	if notifier.calls != 0 {
		t.Errorf("Expected no delivery on fetch failure, got %d", notifier.calls)
	}
}

func TestGetStocks(t *testing.T) {
	fetcher := &fakeFetcher{quotes: testQuotes(25)}
	notifier := &fakeNotifier{}
	h := newTestHandler(fetcher, notifier)

	req := httptest.NewRequest(http.MethodGet, "/api/stocks", nil)
	w := httptest.NewRecorder()

	h.GetStocks(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp StocksResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Count != 20 {
		t.Errorf("Expected top 20 preview, got %d", resp.Count)
	}
	if resp.Stocks[0].Symbol != "SYM24" {
		t.Errorf("Expected highest volume first, got %s", resp.Stocks[0].Symbol)
	}

	// Preview must not send email
	if notifier.calls != 0 {
		t.Errorf("Expected no delivery from preview, got %d", notifier.calls)
	}
}

func TestGetJobs_NoScheduler(t *testing.T) {
	h := newTestHandler(&fakeFetcher{}, &fakeNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	w := httptest.NewRecorder()

	h.GetJobs(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without scheduler, got %d", w.Code)
	}
}

func TestGetConfig_DoesNotEchoSecrets(t *testing.T) {
	h := newTestHandler(&fakeFetcher{}, &fakeNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	w := httptest.NewRecorder()

	h.GetConfig(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	if strings.Contains(body, "configured") {
		t.Errorf("Config endpoint must not echo secret values: %s", body)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["rapidapi_key"] != true {
		t.Errorf("Expected rapidapi_key presence true, got %v", resp["rapidapi_key"])
	}
}
