package preprocess

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanChunks(t *testing.T) {
	tests := []struct {
		name          string
		total         float64
		max           float64
		wantCount     int
		wantChunkSecs float64
	}{
		{
			name:          "below threshold returns single chunk",
			total:         180,
			max:           600,
			wantCount:     1,
			wantChunkSecs: 180,
		},
		{
			name:          "exactly at threshold returns single chunk",
			total:         600,
			max:           600,
			wantCount:     1,
			wantChunkSecs: 600,
		},
		{
			name:          "25 minutes at 600s threshold gives 3 chunks",
			total:         1500,
			max:           600,
			wantCount:     3,
			wantChunkSecs: 500,
		},
		{
			name:          "just over threshold gives 2 chunks",
			total:         601,
			max:           600,
			wantCount:     2,
			wantChunkSecs: 300.5,
		},
		{
			name:          "zero max treated as no split",
			total:         120,
			max:           0,
			wantCount:     1,
			wantChunkSecs: 120,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanChunks(tt.total, tt.max)
			assert.Equal(t, tt.wantCount, plan.Count)
			assert.InDelta(t, tt.wantChunkSecs, plan.ChunkDuration, 0.001)
			assert.InDelta(t, tt.total, plan.ChunkDuration*float64(plan.Count), 0.001)
		})
	}
}

func TestPlanChunksDurationsSumToTotal(t *testing.T) {
	for _, total := range []float64{601, 900, 1500, 3601, 7200} {
		plan := PlanChunks(total, 600)

		var sum float64
		for i := 0; i < plan.Count; i++ {
			length := plan.ChunkDuration
			if i == plan.Count-1 {
				length = total - float64(i)*plan.ChunkDuration
			}
			assert.LessOrEqual(t, length, 600.0+0.001)
			sum += length
		}
		assert.InDelta(t, total, sum, 0.001)
	}
}

func TestCleanupStale(t *testing.T) {
	tempDir := t.TempDir()

	staleDir := filepath.Join(tempDir, "job-old")
	require.NoError(t, os.MkdirAll(staleDir, 0755))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(staleDir, old, old))

	freshDir := filepath.Join(tempDir, "job-new")
	require.NoError(t, os.MkdirAll(freshDir, 0755))

	removed, err := CleanupStale(tempDir, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(staleDir)
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(freshDir)
	assert.NoError(t, err)
}

func TestCleanupStaleMissingDir(t *testing.T) {
	removed, err := CleanupStale(filepath.Join(t.TempDir(), "does-not-exist"), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
