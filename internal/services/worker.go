package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BackfillWorker periodically re-validates complaints that were stored
// without a risk assessment (e.g. rows imported before the engine
// existed, or writes that raced a validation outage). Assessments are
// also backfilled lazily on read; the worker just keeps the backlog
// from growing unbounded.
type BackfillWorker struct {
	complaintSvc *ComplaintService
	batchSize    int
	concurrency  int
	logger       *zap.SugaredLogger
}

// NewBackfillWorker creates a new background validation worker
func NewBackfillWorker(cs *ComplaintService, batchSize int, logger *zap.SugaredLogger) *BackfillWorker {
	if batchSize <= 0 {
		batchSize = 25
	}
	return &BackfillWorker{
		complaintSvc: cs,
		batchSize:    batchSize,
		concurrency:  4,
		logger:       logger,
	}
}

// Start begins the periodic backfill loop
func (w *BackfillWorker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial pass
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Backfill worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce validates one batch of unvalidated complaints. Individual
// failures are logged and skipped; they never stop the batch.
func (w *BackfillWorker) runOnce(ctx context.Context) {
	complaints, err := w.complaintSvc.FindUnvalidated(ctx, w.batchSize)
	if err != nil {
		w.logger.Errorw("Backfill scan failed", "error", err)
		return
	}
	if len(complaints) == 0 {
		return
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.concurrency)

	for i := range complaints {
		c := &complaints[i]
		eg.Go(func() error {
			w.complaintSvc.Revalidate(gctx, c)
			return nil
		})
	}
	_ = eg.Wait()

	w.logger.Infow("Validation backfill complete", "complaints", len(complaints))
}
