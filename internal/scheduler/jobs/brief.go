package jobs

import (
	"context"

	"github.com/wonny/marketbrief/internal/brief"
	"github.com/wonny/marketbrief/pkg/config"
	"github.com/wonny/marketbrief/pkg/logger"
)

// BriefJob runs the daily market brief pipeline on schedule
type BriefJob struct {
	runner   *brief.Runner
	schedule string
	logger   *logger.Logger
}

// NewBriefJob creates a new brief job
func NewBriefJob(runner *brief.Runner, cfg *config.Config, log *logger.Logger) *BriefJob {
	return &BriefJob{
		runner:   runner,
		schedule: cfg.Schedule.Cron,
		logger:   log,
	}
}

// Name returns the job name
func (j *BriefJob) Name() string {
	return "market_brief"
}

// Schedule returns the cron schedule expression (seconds field included).
// Default is weekdays at 15:30 in the configured timezone.
func (j *BriefJob) Schedule() string {
	return j.schedule
}

// Run executes one brief run
func (j *BriefJob) Run(ctx context.Context) error {
	result, err := j.runner.RunOnce(ctx)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"fetched": result.Fetched,
		"ranked":  result.Ranked,
		"subject": result.Subject,
	}).Info("Scheduled brief delivered")

	return nil
}
