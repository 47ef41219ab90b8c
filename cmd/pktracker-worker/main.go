package main

import (
	"context"
	"errors"
	"os"
	"time"

	"pktracker/internal/amqp"
	"pktracker/internal/cli"
	applog "pktracker/internal/log"
	"pktracker/internal/sheets"
	gsheet "pktracker/internal/sheets/google"
	"pktracker/internal/sheets/memory"
	"pktracker/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting pktracker-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, nil)

	// Without a spreadsheet, development runs mirror into memory so the
	// broker wiring can still be exercised locally.
	var ledger sheets.LedgerWriter
	if cfg.GoogleSpreadsheetID == "" && cfg.IsDevelopment() && cfg.HasAMQP() {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, mirroring ledger into memory")
		ledger = memory.New()
	} else {
		if err := cfg.ValidateWorker(); err != nil {
			logger.Error("Worker configuration validation failed", applog.FieldError, err)
			os.Exit(1)
		}
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			LedgerSheet:     cfg.GoogleSheetName,
			AlertsSheet:     cfg.GoogleAlertsSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		ledger = client
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewLedgerWorker(ledger, logger)
	if err := amqpClient.Consume(ctx, w); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		amqpClient.Close()
		os.Exit(1)
	}

	<-done
	logger.Info("Worker shutdown complete")
}
