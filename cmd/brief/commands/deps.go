package commands

import (
	"fmt"

	"github.com/wonny/marketbrief/internal/brief"
	"github.com/wonny/marketbrief/internal/mailer/mailjet"
	"github.com/wonny/marketbrief/internal/provider/finviz"
	"github.com/wonny/marketbrief/internal/quote"
	"github.com/wonny/marketbrief/internal/report"
	"github.com/wonny/marketbrief/internal/scheduler"
	"github.com/wonny/marketbrief/internal/scheduler/jobs"
	"github.com/wonny/marketbrief/pkg/config"
	"github.com/wonny/marketbrief/pkg/httputil"
	"github.com/wonny/marketbrief/pkg/logger"
)

// runtime bundles the wired pipeline dependencies shared by the commands.
type runtime struct {
	cfg       *config.Config
	log       *logger.Logger
	fetcher   *finviz.Client
	ranker    *quote.Ranker
	formatter *report.Formatter
	runner    *brief.Runner
}

func initRuntime() (*runtime, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Create HTTP client
	httpClient := httputil.New(cfg, log).WithRateLimit(cfg.Finviz.RateLimit)

	// 4. Create provider client
	fetcher := finviz.NewClient(cfg, httpClient, log)

	// 5. Create ranker and formatter
	metric, err := quote.ParseMetric(cfg.Report.Metric)
	if err != nil {
		return nil, fmt.Errorf("parse metric: %w", err)
	}
	ranker := quote.NewRanker(metric, cfg.Report.TopN, log)
	formatter := report.NewFormatter(metric, log)

	// 6. Create mailer
	notifier := mailjet.NewClient(cfg, httpClient, log)

	// 7. Create runner
	runner := brief.NewRunner(fetcher, ranker, formatter, notifier, cfg.Report.Recipients, log)

	return &runtime{
		cfg:       cfg,
		log:       log,
		fetcher:   fetcher,
		ranker:    ranker,
		formatter: formatter,
		runner:    runner,
	}, nil
}

func initScheduler() (*scheduler.Scheduler, error) {
	rt, err := initRuntime()
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(rt.log, rt.cfg.Location())

	if err := sched.AddJob(jobs.NewBriefJob(rt.runner, rt.cfg, rt.log)); err != nil {
		return nil, fmt.Errorf("register job: %w", err)
	}

	return sched, nil
}
