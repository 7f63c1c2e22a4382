package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yeoyun/SpendingAnalysis/internal/amqp"
	"github.com/yeoyun/SpendingAnalysis/internal/analysis"
	"github.com/yeoyun/SpendingAnalysis/internal/cli"
	apphttp "github.com/yeoyun/SpendingAnalysis/internal/http"
	"github.com/yeoyun/SpendingAnalysis/internal/report"
	"github.com/yeoyun/SpendingAnalysis/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	params := analysis.DefaultParams()

	// When AMQP is configured, report requests are enqueued for the
	// report-worker process. Without it the API runs them in-process.
	var queue apphttp.ReportQueue
	var runner apphttp.ReportRunner
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			return
		}
		defer amqpClient.Close()
		queue = amqpClient
		logger.Info("Report requests will be queued", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		generator, err := report.NewGenerator(context.Background(), cfg.GeminiModel)
		if err != nil {
			logger.Warn("Report generation disabled", "error", err)
		} else {
			cache := report.NewCache(cfg.ReportCacheDir)
			runner = worker.NewReportWorker(repo, repo, generator, cache, params)
			logger.Info("Report requests will run in-process", "model", cfg.GeminiModel)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, repo, repo, queue, runner, params)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting spending analysis API", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
