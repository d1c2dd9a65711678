package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gagyebu/internal/amqp"
	"gagyebu/internal/cli"
	"gagyebu/internal/log"
	"gagyebu/internal/services"
	gsheet "gagyebu/internal/sheets/google"
	"gagyebu/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting gagyebu-worker")

	res := cli.InitBackend(context.Background(), logger, cfg)

	mirror, err := gsheet.New(context.Background(), gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
	}, logger.WithComponent(log.ComponentSheets).Logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		cli.CloseBackend(logger, res)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	mirrorWorker := worker.NewMirrorWorker(res.Backend, mirror, cfg.MirrorBatchSize)
	reconciler := services.NewReconciler(mirrorWorker, services.ReconcilerConfig{Interval: cfg.MirrorInterval})

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			cli.CloseBackend(logger, res)
			os.Exit(1)
		}
	} else {
		logger.Info("AMQP disabled, relying on periodic catch-up", "interval", cfg.MirrorInterval)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := reconciler.Stop(shutdownCtx); err != nil {
			logger.Warn("Reconciler stop failed", log.FieldError, err)
		}
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logger.Warn("AMQP close failed", log.FieldError, err)
			}
		}
		cli.CloseBackend(logger, res)
	})

	// The first catch-up runs immediately and covers rows saved while the
	// worker was down.
	if err := reconciler.Start(ctx); err != nil {
		logger.Error("Failed to start reconciler", log.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	if consumer != nil {
		g.Go(func() error {
			err := consumer.ConsumeSnapshotSaved(gctx, mirrorWorker.HandleSnapshotSaved)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err)
	}
	if ctx.Err() == nil {
		// Consumer gave up without a signal.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		_ = reconciler.Stop(shutdownCtx)
		cancel()
		if consumer != nil {
			_ = consumer.Close()
		}
		cli.CloseBackend(logger, res)
		os.Exit(1)
	}

	<-done
	logger.Info("Worker stopped", "last_mirrored_id", mirrorWorker.LastID())
}
