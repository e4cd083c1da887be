package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/anshulkhatri/studyscribe/internal/logging"
	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// AssetSource lists pending assets that may need re-enqueueing.
type AssetSource interface {
	ListStalePending(ctx context.Context, minAge time.Duration, limit int) ([]*models.MediaAsset, error)
}

// Publisher puts a transcription job on the work queue.
type Publisher interface {
	PublishJob(ctx context.Context, assetID string) error
}

// Reconciler periodically re-enqueues pending assets whose job message was
// lost, for instance when the submitting process died between the database
// insert and the publish. Re-publishing an asset that is already queued is
// harmless: the worker's claim transition drops the duplicate.
type Reconciler struct {
	assets    AssetSource
	publisher Publisher
	interval  time.Duration
	minAge    time.Duration
	batchSize int
	logger    *logging.Logger
}

// NewReconciler creates a reconciler. minAge keeps freshly submitted assets
// out of scope while their first job message is still in flight.
func NewReconciler(assets AssetSource, publisher Publisher, interval, minAge time.Duration, logger *logging.Logger) *Reconciler {
	return &Reconciler{
		assets:    assets,
		publisher: publisher,
		interval:  interval,
		minAge:    minAge,
		batchSize: 100,
		logger:    logger,
	}
}

// Run reconciles on a fixed interval until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := r.Reconcile(ctx); err != nil {
				r.logger.WithError(err).Warn("pending asset reconciliation failed")
			} else if n > 0 {
				r.logger.Infof("Re-enqueued %d stalled pending assets", n)
			}
		}
	}
}

// Reconcile re-publishes one batch of stalled pending assets and returns how
// many were enqueued.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	assets, err := r.assets.ListStalePending(ctx, r.minAge, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list stalled assets: %w", err)
	}

	published := 0
	for _, asset := range assets {
		if err := r.publisher.PublishJob(ctx, asset.ID); err != nil {
			return published, fmt.Errorf("failed to re-enqueue asset %s: %w", asset.ID, err)
		}
		published++
	}

	return published, nil
}
