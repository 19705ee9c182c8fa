package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/marketbrief/internal/brief"
	"github.com/wonny/marketbrief/internal/quote"
	"github.com/wonny/marketbrief/internal/scheduler"
	"github.com/wonny/marketbrief/pkg/config"
	"github.com/wonny/marketbrief/pkg/logger"
)

// ReportHandler handles report-related API endpoints
type ReportHandler struct {
	runner    *brief.Runner
	fetcher   brief.Fetcher
	ranker    *quote.Ranker
	scheduler *scheduler.Scheduler // nil when the API runs without the scheduler
	config    *config.Config
	logger    *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	runner *brief.Runner,
	fetcher brief.Fetcher,
	ranker *quote.Ranker,
	sched *scheduler.Scheduler,
	cfg *config.Config,
	log *logger.Logger,
) *ReportHandler {
	return &ReportHandler{
		runner:    runner,
		fetcher:   fetcher,
		ranker:    ranker,
		scheduler: sched,
		config:    cfg,
		logger:    log,
	}
}

// GenerateResponse represents a manual run response
type GenerateResponse struct {
	Status string           `json:"status"`
	Result *brief.RunResult `json:"result"`
}

// Generate runs the pipeline immediately and sends the email
// POST /api/report/generate
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.runner.RunOnce(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Manual report run failed")

		stage := "run"
		var provErr *brief.ProviderError
		var delErr *brief.DeliveryError
		switch {
		case errors.As(err, &provErr):
			stage = "fetch"
		case errors.As(err, &delErr):
			stage = "notify"
		}

		respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":  err.Error(),
			"stage":  stage,
			"result": result,
		})
		return
	}

	respondJSON(w, http.StatusOK, GenerateResponse{Status: "sent", Result: result})
}

// StocksResponse represents a ranked preview response
type StocksResponse struct {
	Count  int           `json:"count"`
	Stocks []stockRecord `json:"stocks"`
}

type stockRecord struct {
	Symbol        string `json:"symbol"`
	Price         string `json:"price"`
	Volume        int64  `json:"volume"`
	PercentChange string `json:"percent_change"`
	MarketCap     string `json:"market_cap"`
}

// GetStocks fetches and ranks without sending anything
// GET /api/stocks
func (h *ReportHandler) GetStocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	quotes, err := h.fetcher.Screen(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Stock preview fetch failed")
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	ranked := h.ranker.Rank(quotes)

	records := make([]stockRecord, 0, len(ranked))
	for _, q := range ranked {
		records = append(records, stockRecord{
			Symbol:        q.Symbol,
			Price:         q.Price.StringFixed(2),
			Volume:        q.Volume,
			PercentChange: q.PercentChange.StringFixed(2),
			MarketCap:     q.MarketCap.StringFixed(0),
		})
	}

	respondJSON(w, http.StatusOK, StocksResponse{Count: len(records), Stocks: records})
}

// GetJobs returns scheduler statistics
// GET /api/jobs
func (h *ReportHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondError(w, http.StatusNotFound, "Scheduler is not running in this process")
		return
	}

	respondJSON(w, http.StatusOK, h.scheduler.GetJobStats())
}

// GetConfig reports which credentials are configured without echoing values
// GET /api/config
func (h *ReportHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rapidapi_key":       h.config.Finviz.APIKey != "",
		"mailjet_api_key":    h.config.Mailjet.APIKey != "",
		"mailjet_api_secret": h.config.Mailjet.APISecret != "",
		"mail_from":          h.config.Mailjet.FromEmail,
		"recipients":         len(h.config.Report.Recipients),
		"metric":             h.config.Report.Metric,
		"top_n":              h.config.Report.TopN,
		"schedule":           h.config.Schedule.Cron,
		"timezone":           h.config.Schedule.Timezone,
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
