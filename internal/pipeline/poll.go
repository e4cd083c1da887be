package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// ErrPollTimeout means the asset did not reach a terminal state within the
// attempt budget.
var ErrPollTimeout = errors.New("timed out waiting for processing to finish")

// WaitForAsset polls the asset status until it reaches a terminal state, the
// attempt budget runs out, or the context is cancelled. It returns the final
// asset on completion and the asset's recorded error on failure.
func WaitForAsset(ctx context.Context, assets AssetStore, assetID string, interval time.Duration, maxAttempts int) (*models.MediaAsset, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		asset, err := assets.GetAsset(ctx, assetID)
		if err != nil {
			return nil, err
		}

		if asset.Status == models.AssetStatusCompleted {
			return asset, nil
		}
		if asset.Status == models.AssetStatusFailed {
			return asset, fmt.Errorf("processing failed: %s", asset.ProcessingError)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return nil, ErrPollTimeout
}
