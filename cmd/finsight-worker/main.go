package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finsight/internal/amqp"
	"finsight/internal/config"
	"finsight/internal/log"
	"finsight/internal/services"
	gsheet "finsight/internal/sheets/google"
	"finsight/internal/store/sqlite"
	"finsight/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting finsight-worker")

	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sheet, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	// Only the SQLite store tracks mirror progress; other backends rely on
	// the message path alone.
	var (
		marker  worker.MirrorMarker
		sweeper *services.MirrorSweeper
		db      *sqlite.Store
	)
	if cfg.DataBackend == "sqlite" {
		db, err = sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite database", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer db.Close()
		marker = db
	}

	mirror := worker.NewMirrorWorker(sheet, marker)

	if db != nil {
		sweepCfg := services.DefaultMirrorSweeperConfig()
		sweepCfg.PollInterval = cfg.MirrorInterval
		sweepCfg.BatchSize = cfg.MirrorBatchSize
		sweeper = services.NewMirrorSweeper(db, mirror, sweepCfg)
		if err := sweeper.Start(ctx); err != nil {
			logger.Error("Failed to start mirror sweeper", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("Skipping mirror sweeps - backend does not track mirror progress", "backend", cfg.DataBackend)
	}

	amqpClient, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 5)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	go func() {
		if err := amqpClient.ConsumeRecordCreated(ctx, mirror.HandleRecordCreated); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}
	cancel()

	if sweeper != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := sweeper.Stop(shutdownCtx); err != nil {
			logger.Error("Mirror sweeper shutdown error", "error", err)
		}
	}

	logger.Info("finsight-worker stopped")
}
