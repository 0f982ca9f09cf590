package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"fundlog/internal/api"
	"fundlog/internal/config"
	"fundlog/internal/logging"
	"fundlog/internal/scheduler"
	"fundlog/pkg/fundlog"
)

func main() {
	var dataDir string
	var port int
	var host string
	var refreshOnStart bool

	flag.StringVar(&dataDir, "data-dir", "", "Directory for storing database and application data")
	flag.IntVar(&port, "port", 8000, "Port to run the server on")
	flag.StringVar(&host, "host", "127.0.0.1", "Host to bind the server to")
	flag.BoolVar(&refreshOnStart, "refresh-on-start", false, "Refresh the portfolio once at startup")
	flag.Parse()

	if dataDir != "" {
		config.SetRuntimeDataDir(dataDir)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger, writer, err := logging.NewLogger(logging.Options{
		Dir:      cfg.LogDir(),
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		Location: cfg.Location(),
	})
	if err != nil {
		slog.Error("failed to initialize logger", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close log writer", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg, logger, fmt.Sprintf("%s:%d", host, port), refreshOnStart); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

// run serves the API and the refresh schedule until ctx is canceled.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger, addr string, refreshOnStart bool) error {
	core, err := openCore(cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("initialize core: %w", err)
	}
	defer func() {
		if err := core.Close(); err != nil {
			logger.Error("failed to close core", "err", err)
		}
	}()

	sched := scheduler.New(scheduler.Options{
		Logger:     logger,
		Location:   cfg.Location(),
		JobTimeout: 5 * time.Minute,
	})
	if _, err := sched.AddRefresh(cfg.RefreshCron, core); err != nil {
		return fmt.Errorf("schedule refresh %q: %w", cfg.RefreshCron, err)
	}
	sched.Start()
	if refreshOnStart {
		go func() {
			_ = sched.RunNow(scheduler.NewRefreshJob(core, logger))
		}()
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           newHandler(core, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	logger.Info("server starting", "addr", addr, "db_path", core.DBPath(), "refresh_cron", cfg.RefreshCron)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var result error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		result = err
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
	sched.Stop(shutdownCtx)
	return result
}

func openCore(cfg config.Config, logger *slog.Logger, client fundlog.HTTPDoer) (*fundlog.Core, error) {
	return fundlog.OpenWithOptions(fundlog.Options{
		DBPath:       cfg.DBPath,
		Logger:       logger,
		SourceURL:    cfg.SourceURL,
		HTTPTimeout:  cfg.FetchTimeout,
		HTTPClient:   client,
		FetchWorkers: cfg.FetchWorkers,
		Location:     cfg.Location(),
	})
}

func newHandler(svc api.Service, logger *slog.Logger) http.Handler {
	return middleware.Compress(5)(api.NewRouter(svc, logger))
}
