package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wonny/marketbrief/pkg/logger"
)

type testJob struct {
	name     string
	schedule string
	runs     int32
	block    chan struct{} // when set, Run blocks until closed
	err      error
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return j.schedule }

func (j *testJob) Run(ctx context.Context) error {
	atomic.AddInt32(&j.runs, 1)
	if j.block != nil {
		<-j.block
	}
	return j.err
}

func newTestScheduler() *Scheduler {
	return New(logger.NewNop(), time.UTC)
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()

	job := &testJob{name: "market_brief", schedule: "0 30 15 * * MON-FRI"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() failed: %v", err)
	}

	jobs := s.GetAllJobs()
	if len(jobs) != 1 || jobs[0] != "market_brief" {
		t.Errorf("GetAllJobs() = %v, want [market_brief]", jobs)
	}
}

func TestAddJobDuplicate(t *testing.T) {
	s := newTestScheduler()

	job := &testJob{name: "market_brief", schedule: "@daily"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() failed: %v", err)
	}

	if err := s.AddJob(job); err == nil {
		t.Error("Expected error when adding duplicate job")
	}
}

func TestAddJobInvalidSchedule(t *testing.T) {
	s := newTestScheduler()

	job := &testJob{name: "bad", schedule: "not a cron expr"}
	if err := s.AddJob(job); err == nil {
		t.Error("Expected error for invalid cron expression")
	}
}

func TestRunJob(t *testing.T) {
	s := newTestScheduler()

	job := &testJob{name: "market_brief", schedule: "@daily"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() failed: %v", err)
	}

	if err := s.RunJob("market_brief"); err != nil {
		t.Fatalf("RunJob() failed: %v", err)
	}

	waitFor(t, func() bool { return atomic.LoadInt32(&job.runs) == 1 })

	waitFor(t, func() bool {
		history, err := s.GetJobHistory("market_brief")
		return err == nil && len(history.Results) == 1
	})

	history, _ := s.GetJobHistory("market_brief")
	if !history.Results[0].Success {
		t.Error("Expected successful run in history")
	}
}

func TestRunJobNotFound(t *testing.T) {
	s := newTestScheduler()

	if err := s.RunJob("missing"); err == nil {
		t.Error("Expected error for unknown job")
	}
}

func TestRunJobFailureRecorded(t *testing.T) {
	s := newTestScheduler()

	job := &testJob{name: "market_brief", schedule: "@daily", err: errors.New("provider down")}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() failed: %v", err)
	}

	if err := s.RunJob("market_brief"); err != nil {
		t.Fatalf("RunJob() failed: %v", err)
	}

	waitFor(t, func() bool {
		history, err := s.GetJobHistory("market_brief")
		return err == nil && len(history.Results) == 1
	})

	history, _ := s.GetJobHistory("market_brief")
	result := history.Results[0]
	if result.Success {
		t.Error("Expected failed run in history")
	}
	if result.Error != "provider down" {
		t.Errorf("Expected error message recorded, got %q", result.Error)
	}
	if history.GetSuccessRate() != 0.0 {
		t.Errorf("Expected success rate 0.0, got %v", history.GetSuccessRate())
	}
}

func TestOverlapGuard(t *testing.T) {
	s := newTestScheduler()

	block := make(chan struct{})
	job := &testJob{name: "market_brief", schedule: "@daily", block: block}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() failed: %v", err)
	}

	// First run blocks inside Run
	if err := s.RunJob("market_brief"); err != nil {
		t.Fatalf("RunJob() failed: %v", err)
	}
	waitFor(t, func() bool { return atomic.LoadInt32(&job.runs) == 1 })

	// Second trigger must be skipped, not queued
	s.runJob(job)

	if got := atomic.LoadInt32(&job.runs); got != 1 {
		t.Errorf("Expected overlapping run to be skipped, Run called %d times", got)
	}

	history, _ := s.GetJobHistory("market_brief")
	if history.Skipped != 1 {
		t.Errorf("Expected 1 skipped tick recorded, got %d", history.Skipped)
	}

	close(block)
	waitFor(t, func() bool {
		h, _ := s.GetJobHistory("market_brief")
		return len(h.Results) == 1
	})

	// After the first run finishes the job may run again
	s.runJob(job)
	if got := atomic.LoadInt32(&job.runs); got != 2 {
		t.Errorf("Expected job to run again after previous run finished, Run called %d times", got)
	}
}

func TestGetJobStats(t *testing.T) {
	s := newTestScheduler()

	job := &testJob{name: "market_brief", schedule: "@daily"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() failed: %v", err)
	}

	s.runJob(job)

	stats := s.GetJobStats()
	stat, ok := stats["market_brief"]
	if !ok {
		t.Fatal("Expected stats for market_brief")
	}

	if stat.TotalRuns != 1 || stat.SuccessCount != 1 || stat.FailureCount != 0 {
		t.Errorf("Unexpected stats: %+v", stat)
	}
	if stat.Schedule != "@daily" {
		t.Errorf("Expected schedule @daily, got %s", stat.Schedule)
	}
	if stat.LastRun == nil || stat.LastSuccess == nil {
		t.Error("Expected LastRun and LastSuccess to be set")
	}
}

func TestJobHistoryCap(t *testing.T) {
	h := &JobHistory{}

	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "market_brief", Success: true})
	}

	if len(h.Results) != 100 {
		t.Errorf("Expected history capped at 100, got %d", len(h.Results))
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
