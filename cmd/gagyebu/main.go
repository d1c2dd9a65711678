package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"gagyebu/internal/cli"
	apphttp "gagyebu/internal/http"
	"gagyebu/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	res := cli.InitBackend(context.Background(), logger, cfg)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SessionMax:         cfg.SessionMax,
		SessionIdleTTL:     cfg.SessionIdleTTL,
		Logger:             logger,
	}, res.Backend)
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		cli.CloseBackend(logger, res)
		os.Exit(1)
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cli.CloseBackend(logger, res)
	})

	logger.Info("Server starting",
		"addr", srv.Addr,
		"backend", cfg.DataBackend,
		"rate_limit_per_minute", cfg.RateLimitPerMinute)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed to start", log.FieldError, err, "addr", srv.Addr)
		cli.CloseBackend(logger, res)
		os.Exit(1)
	}

	<-done
	logger.Info("Server exited")
}
