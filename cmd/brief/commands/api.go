package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/marketbrief/internal/api"
	"github.com/wonny/marketbrief/internal/api/handlers"
	"github.com/wonny/marketbrief/internal/scheduler"
	"github.com/wonny/marketbrief/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

This command:
- Starts the HTTP API server
- Exposes manual report triggers and ranked previews
- Optionally runs the scheduler inside the same process

Endpoints:
  GET  /health                - Health check
  POST /api/report/generate   - Run the pipeline and send the brief
  GET  /api/stocks            - Ranked preview without sending email
  GET  /api/jobs              - Scheduler job statistics
  GET  /api/config            - Configuration presence (no secrets)

Example:
  go run ./cmd/brief api
  go run ./cmd/brief api --port 8089 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from config)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "run the scheduler in the same process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Market Brief API Server ===")

	rt, err := initRuntime()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	rt.log.WithFields(map[string]interface{}{
		"port": rt.cfg.Port,
		"env":  rt.cfg.Env,
	}).Info("Initializing API server")

	// Scheduler is optional for the API process
	var sched *scheduler.Scheduler
	if apiWithScheduler {
		sched = scheduler.New(rt.log, rt.cfg.Location())
		if err := sched.AddJob(jobs.NewBriefJob(rt.runner, rt.cfg, rt.log)); err != nil {
			return fmt.Errorf("register job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		rt.log.Info("Scheduler started")
	}

	reportHandler := handlers.NewReportHandler(rt.runner, rt.fetcher, rt.ranker, sched, rt.cfg, rt.log)
	router := api.NewRouter(reportHandler, rt.log)
	server := api.New(rt.cfg, rt.log, router)

	go func() {
		if err := server.Start(); err != nil {
			rt.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	rt.log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", rt.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/report/generate")
	fmt.Println("  GET  /api/stocks")
	fmt.Println("  GET  /api/jobs")
	fmt.Println("  GET  /api/config")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	rt.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	rt.log.Info("Server stopped")
	return nil
}
