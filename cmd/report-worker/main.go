package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yeoyun/SpendingAnalysis/internal/amqp"
	"github.com/yeoyun/SpendingAnalysis/internal/analysis"
	"github.com/yeoyun/SpendingAnalysis/internal/cli"
	"github.com/yeoyun/SpendingAnalysis/internal/report"
	"github.com/yeoyun/SpendingAnalysis/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting report-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the report worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	generator, err := report.NewGenerator(context.Background(), cfg.GeminiModel)
	if err != nil {
		logger.Error("Failed to initialize report generator", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	cache := report.NewCache(cfg.ReportCacheDir)
	reportWorker := worker.NewReportWorker(repo, repo, generator, cache, analysis.DefaultParams())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeReportRequests(gctx, func(msg *amqp.ReportRequestMessage) error {
			return reportWorker.HandleReportRequest(gctx, msg)
		})
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	// Give in-flight message handling a moment to finish acking.
	time.Sleep(time.Second)
	logger.Info("Worker shutdown complete")
}
