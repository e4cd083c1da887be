package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshulkhatri/studyscribe/internal/logging"
	"github.com/anshulkhatri/studyscribe/pkg/models"
)

type fakeAssetSource struct {
	assets []*models.MediaAsset
	err    error
	minAge time.Duration
}

func (f *fakeAssetSource) ListStalePending(_ context.Context, minAge time.Duration, limit int) ([]*models.MediaAsset, error) {
	f.minAge = minAge
	if f.err != nil {
		return nil, f.err
	}
	if len(f.assets) > limit {
		return f.assets[:limit], nil
	}
	return f.assets, nil
}

type fakePublisher struct {
	published []string
	failOn    string
}

func (f *fakePublisher) PublishJob(_ context.Context, assetID string) error {
	if assetID == f.failOn {
		return errors.New("queue unavailable")
	}
	f.published = append(f.published, assetID)
	return nil
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.NewLogger(logging.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return logger
}

func TestReconcileRepublishesStalledAssets(t *testing.T) {
	source := &fakeAssetSource{assets: []*models.MediaAsset{
		{ID: "a1", Status: models.AssetStatusPending},
		{ID: "a2", Status: models.AssetStatusPending},
	}}
	publisher := &fakePublisher{}
	r := NewReconciler(source, publisher, time.Minute, 5*time.Minute, testLogger(t))

	n, err := r.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a1", "a2"}, publisher.published)
	assert.Equal(t, 5*time.Minute, source.minAge)
}

func TestReconcileNothingStalled(t *testing.T) {
	source := &fakeAssetSource{}
	publisher := &fakePublisher{}
	r := NewReconciler(source, publisher, time.Minute, 5*time.Minute, testLogger(t))

	n, err := r.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, publisher.published)
}

func TestReconcileListError(t *testing.T) {
	source := &fakeAssetSource{err: errors.New("db down")}
	publisher := &fakePublisher{}
	r := NewReconciler(source, publisher, time.Minute, 5*time.Minute, testLogger(t))

	_, err := r.Reconcile(context.Background())
	assert.Error(t, err)
	assert.Empty(t, publisher.published)
}

func TestReconcileStopsOnPublishError(t *testing.T) {
	source := &fakeAssetSource{assets: []*models.MediaAsset{
		{ID: "a1", Status: models.AssetStatusPending},
		{ID: "a2", Status: models.AssetStatusPending},
		{ID: "a3", Status: models.AssetStatusPending},
	}}
	publisher := &fakePublisher{failOn: "a2"}
	r := NewReconciler(source, publisher, time.Minute, 5*time.Minute, testLogger(t))

	n, err := r.Reconcile(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"a1"}, publisher.published)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	source := &fakeAssetSource{}
	publisher := &fakePublisher{}
	r := NewReconciler(source, publisher, 10*time.Millisecond, time.Minute, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
