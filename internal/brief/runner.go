package brief

import (
	"context"
	"time"

	"github.com/wonny/marketbrief/internal/quote"
	"github.com/wonny/marketbrief/internal/report"
	"github.com/wonny/marketbrief/pkg/logger"
)

// Fetcher returns the screened stock list for this run
type Fetcher interface {
	Screen(ctx context.Context) ([]quote.Quote, error)
}

// Notifier delivers the rendered report
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Message is the email payload handed to the notifier
type Message struct {
	Recipients []string
	Subject    string
	TextBody   string
	HTMLBody   string
}

// RunResult summarizes one pipeline run
type RunResult struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Fetched   int           `json:"fetched"`
	Ranked    int           `json:"ranked"`
	Subject   string        `json:"subject"`
	Notified  bool          `json:"notified"`
}

// Runner executes the fetch → rank → format → notify pipeline.
// It holds no state between runs.
type Runner struct {
	fetcher    Fetcher
	ranker     *quote.Ranker
	formatter  *report.Formatter
	notifier   Notifier
	recipients []string
	logger     *logger.Logger
}

// NewRunner creates a new pipeline runner
func NewRunner(
	fetcher Fetcher,
	ranker *quote.Ranker,
	formatter *report.Formatter,
	notifier Notifier,
	recipients []string,
	log *logger.Logger,
) *Runner {
	return &Runner{
		fetcher:    fetcher,
		ranker:     ranker,
		formatter:  formatter,
		notifier:   notifier,
		recipients: recipients,
		logger:     log,
	}
}

// RunOnce executes one complete run. A fetch failure aborts the run
// before anything is ranked or sent; a zero-result fetch still sends the
// no-results notice; a delivery failure fails the run after ranking
// succeeded. The returned RunResult is valid even on error.
func (r *Runner) RunOnce(ctx context.Context) (*RunResult, error) {
	result := &RunResult{StartTime: time.Now()}
	defer func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
	}()

	r.logger.Info("Starting brief run")

	// 1. Fetch
	quotes, err := r.fetcher.Screen(ctx)
	if err != nil {
		r.logger.WithError(err).Error("Fetch failed, aborting run")
		return result, err
	}
	result.Fetched = len(quotes)

	// 2. Rank
	ranked := r.ranker.Rank(quotes)
	result.Ranked = len(ranked)

	// 3. Format
	rpt := r.formatter.Build(ranked, result.StartTime)
	result.Subject = rpt.Subject

	// 4. Notify
	msg := Message{
		Recipients: r.recipients,
		Subject:    rpt.Subject,
		TextBody:   rpt.Text,
		HTMLBody:   rpt.HTML,
	}
	if err := r.notifier.Send(ctx, msg); err != nil {
		r.logger.WithError(err).Error("Delivery failed")
		return result, err
	}
	result.Notified = true

	r.logger.WithFields(map[string]interface{}{
		"fetched":    result.Fetched,
		"ranked":     result.Ranked,
		"recipients": len(r.recipients),
	}).Info("Brief run completed successfully")

	return result, nil
}
