package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"pagesmith/app/internal/config"
	appdb "pagesmith/app/internal/db"
	"pagesmith/app/internal/genai"
	apphttp "pagesmith/app/internal/http"
	applog "pagesmith/app/internal/log"
	"pagesmith/app/internal/metrics"
	"pagesmith/app/internal/pages"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	sentryHub, flush, err := applog.InitSentry(logger, applog.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		return eris.Wrap(err, "failure initialising sentry")
	}
	defer flush()

	dbConn, err := appdb.Open(appdb.Options{Path: cfg.DBPath})
	if err != nil {
		return eris.Wrap(err, "opening database")
	}
	defer func() {
		if closeErr := appdb.Close(dbConn); closeErr != nil {
			logger.WithError(closeErr).Error("closing database")
		}
	}()

	if err := pages.Migrate(ctx, dbConn, logger); err != nil {
		return eris.Wrap(err, "running migrations")
	}

	repository, err := pages.NewRepository(dbConn, logger)
	if err != nil {
		return eris.Wrap(err, "building page repository")
	}

	client, err := genai.NewClient(genai.ClientOptions{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMEndpoint,
		Logger:  logger,
	})
	if err != nil {
		return eris.Wrap(err, "creating llm client")
	}

	if cfg.LLMModel == "" {
		return eris.New("LLM_MODEL must name the generation model")
	}

	generator, err := genai.NewGateway(genai.GatewayOptions{
		Client:  client,
		Model:   cfg.LLMModel,
		Timeout: cfg.GenerationTimeout,
	})
	if err != nil {
		return eris.Wrap(err, "initialising generation gateway")
	}

	recorder := metrics.NewRecorder(nil)

	pageService, err := pages.NewService(repository, generator, logger, sentryHub, recorder)
	if err != nil {
		return eris.Wrap(err, "creating page service")
	}

	transport, err := apphttp.NewServer(apphttp.Options{
		PageService: pageService,
		Database:    dbConn,
		Logger:      logger,
		SentryHub:   sentryHub,
		Recorder:    recorder,
		RateLimiter: apphttp.RateLimiterSettings{
			RequestsPerSecond: cfg.RateLimitPerSec,
			Burst:             cfg.RateLimitBurst,
			ClientTTL:         cfg.RateLimitTTL,
		},
	})
	if err != nil {
		return eris.Wrap(err, "initialising http transport")
	}

	httpServer := &stdhttp.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.ServerPort),
		Handler: transport.Handler(),
	}

	logger.WithFields(logrus.Fields{
		"addr":  httpServer.Addr,
		"model": cfg.LLMModel,
	}).Info("starting http server")

	serverErrCh := make(chan error, 1)
	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			return eris.Wrap(err, "http server error")
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "shutting down http server")
	}

	logger.Info("http server shut down cleanly")
	return nil
}
