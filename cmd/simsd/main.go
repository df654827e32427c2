// Package main wires together the analytics service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/simswatch/sims-analytics/internal/api"
	"github.com/simswatch/sims-analytics/internal/archive"
	"github.com/simswatch/sims-analytics/internal/classify"
	"github.com/simswatch/sims-analytics/internal/clock/system"
	"github.com/simswatch/sims-analytics/internal/config"
	"github.com/simswatch/sims-analytics/internal/dashboard"
	"github.com/simswatch/sims-analytics/internal/exa"
	"github.com/simswatch/sims-analytics/internal/id/uuid"
	"github.com/simswatch/sims-analytics/internal/ingest"
	"github.com/simswatch/sims-analytics/internal/logging"
	"github.com/simswatch/sims-analytics/internal/metrics"
	"github.com/simswatch/sims-analytics/internal/news"
	"github.com/simswatch/sims-analytics/internal/normalize"
	"github.com/simswatch/sims-analytics/internal/notify"
	"github.com/simswatch/sims-analytics/internal/store/postgres"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	store, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	defer store.Close()

	sources := news.DefaultSourceSets
	searcher, err := exa.New(exa.Config{
		APIKey:     cfg.Exa.APIKey,
		BaseURL:    cfg.Exa.BaseURL,
		Query:      cfg.Exa.Query,
		NumResults: cfg.Exa.NumResults,
		Timeout:    cfg.ExaTimeout(),
		Domains:    sources.All(),
	})
	if err != nil {
		logger.Fatal("search client init failed", zap.Error(err))
	}

	classifier := classify.New(classify.DefaultTaxonomy)
	normalizer := normalize.New(classifier, sources)

	archiver, err := newArchiver(ctx, cfg)
	if err != nil {
		logger.Fatal("archive init failed", zap.Error(err))
	}
	defer func() {
		if closeErr := archiver.Close(); closeErr != nil {
			logger.Warn("archive close failed", zap.Error(closeErr))
		}
	}()

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		logger.Fatal("publisher init failed", zap.Error(err))
	}
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			logger.Warn("publisher close failed", zap.Error(closeErr))
		}
	}()

	ingestor := ingest.New(
		searcher,
		store,
		normalizer,
		archiver,
		publisher,
		system.New(),
		uuid.New(),
		logger.Named("ingest"),
	)
	aggregator := dashboard.New(classifier, sources, nil)

	apiServer := api.NewServer(store, ingestor, aggregator, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if cfg.Ingest.Enabled {
		go func() {
			logger.Info("poller started", zap.Duration("interval", cfg.IngestInterval()))
			ingest.StartPolling(ctx, ingestor, cfg.IngestInterval(), logger.Named("poller"))
		}()
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}

func newArchiver(ctx context.Context, cfg config.Config) (news.Archiver, error) {
	switch cfg.Archive.Provider {
	case "gcs":
		return archive.NewGCS(ctx, cfg.Archive.Bucket, cfg.Archive.Prefix)
	case "local":
		return archive.NewLocal(cfg.Archive.Dir)
	default:
		return archive.NoOp{}, nil
	}
}

func newPublisher(ctx context.Context, cfg config.Config) (news.Publisher, error) {
	switch cfg.PubSub.Provider {
	case "pubsub":
		return notify.NewPubSub(ctx, cfg.PubSub.ProjectID, cfg.PubSub.Topic)
	default:
		return notify.NoOp{}, nil
	}
}
