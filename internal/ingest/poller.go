package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// StartPolling runs an ingestion cycle every interval until the context is
// canceled. It blocks; run it in its own goroutine. A cycle that is still in
// flight when the ticker fires is left alone.
func StartPolling(ctx context.Context, ingestor *Ingestor, interval time.Duration, logger *zap.Logger) {
	log := logger.With(zap.String("component", "poller"), zap.Duration("interval", interval))
	log.Info("starting ingestion poller")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := ingestor.RunCycle(ctx); err != nil {
				if errors.Is(err, ErrCycleInFlight) {
					log.Warn("previous cycle still running, skipping tick")
					continue
				}
				log.Error("ingestion cycle failed", zap.Error(err))
			}
		case <-ctx.Done():
			log.Info("stopping ingestion poller")
			return
		}
	}
}
