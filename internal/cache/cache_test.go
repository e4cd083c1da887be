package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/anshulkhatri/studyscribe/pkg/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	// Create a mini Redis server for testing
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	cache, err := NewCache(mr.Host(), mr.Server().Addr().Port, "", 0)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create cache: %v", err)
	}

	return cache, mr
}

func TestNewCache(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	if cache == nil {
		t.Fatal("Cache should not be nil")
	}

	// Test ping
	ctx := context.Background()
	if err := cache.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestCache_AssetStatusOperations(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()

	asset := &models.MediaAsset{
		ID:       "test-asset-1",
		Filename: "lecture.mp4",
		Kind:     models.AssetKindVideo,
		Size:     1024,
		MimeType: "video/mp4",
		Status:   models.AssetStatusPending,
	}

	// Set asset status
	if err := cache.SetAssetStatus(ctx, asset, time.Minute); err != nil {
		t.Fatalf("SetAssetStatus failed: %v", err)
	}

	// Get asset status
	cached, err := cache.GetAssetStatus(ctx, "test-asset-1")
	if err != nil {
		t.Fatalf("GetAssetStatus failed: %v", err)
	}
	if cached == nil {
		t.Fatal("Expected cached asset, got nil")
	}
	if cached.Status != models.AssetStatusPending {
		t.Errorf("Expected status %q, got %q", models.AssetStatusPending, cached.Status)
	}
	if cached.Filename != "lecture.mp4" {
		t.Errorf("Expected filename lecture.mp4, got %q", cached.Filename)
	}

	// Delete asset status
	if err := cache.DeleteAssetStatus(ctx, "test-asset-1"); err != nil {
		t.Fatalf("DeleteAssetStatus failed: %v", err)
	}

	cached, err = cache.GetAssetStatus(ctx, "test-asset-1")
	if err != nil {
		t.Fatalf("GetAssetStatus after delete failed: %v", err)
	}
	if cached != nil {
		t.Error("Expected cache miss after delete")
	}
}

func TestCache_AssetStatusMiss(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	cached, err := cache.GetAssetStatus(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetAssetStatus failed: %v", err)
	}
	if cached != nil {
		t.Error("Expected nil for cache miss")
	}
}

func TestCache_AssetStatusTTL(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()

	asset := &models.MediaAsset{ID: "ttl-asset", Status: models.AssetStatusProcessing}
	if err := cache.SetAssetStatus(ctx, asset, time.Second); err != nil {
		t.Fatalf("SetAssetStatus failed: %v", err)
	}

	// Fast-forward past the TTL
	mr.FastForward(2 * time.Second)

	cached, err := cache.GetAssetStatus(ctx, "ttl-asset")
	if err != nil {
		t.Fatalf("GetAssetStatus failed: %v", err)
	}
	if cached != nil {
		t.Error("Expected cache miss after TTL expiry")
	}
}

func TestCache_TranscriptOperations(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()

	transcript := &models.Transcript{
		ID:       "test-transcript-1",
		AssetID:  "test-asset-1",
		FullText: "hello world",
		Language: "en",
		Version:  3,
		Segments: models.Segments{
			{Index: 0, Start: 0, End: 5, Text: "hello world"},
		},
	}

	if err := cache.SetTranscript(ctx, transcript, time.Minute); err != nil {
		t.Fatalf("SetTranscript failed: %v", err)
	}

	cached, err := cache.GetTranscript(ctx, "test-transcript-1")
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if cached == nil {
		t.Fatal("Expected cached transcript, got nil")
	}
	if cached.Version != 3 {
		t.Errorf("Expected version 3, got %d", cached.Version)
	}
	if len(cached.Segments) != 1 {
		t.Errorf("Expected 1 segment, got %d", len(cached.Segments))
	}

	if err := cache.DeleteTranscript(ctx, "test-transcript-1"); err != nil {
		t.Fatalf("DeleteTranscript failed: %v", err)
	}

	cached, err = cache.GetTranscript(ctx, "test-transcript-1")
	if err != nil {
		t.Fatalf("GetTranscript after delete failed: %v", err)
	}
	if cached != nil {
		t.Error("Expected cache miss after delete")
	}
}

func TestCache_ExportOperations(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()

	document := []byte("WEBVTT\n\n00:00:00.000 --> 00:00:05.000\nhello\n")
	if err := cache.SetExport(ctx, "t1", 2, "vtt", document, time.Minute); err != nil {
		t.Fatalf("SetExport failed: %v", err)
	}

	cached, err := cache.GetExport(ctx, "t1", 2, "vtt")
	if err != nil {
		t.Fatalf("GetExport failed: %v", err)
	}
	if string(cached) != string(document) {
		t.Errorf("Cached export mismatch: got %q", cached)
	}

	// A different version is a different key, so edits never serve stale renders.
	cached, err = cache.GetExport(ctx, "t1", 3, "vtt")
	if err != nil {
		t.Fatalf("GetExport failed: %v", err)
	}
	if cached != nil {
		t.Error("Expected cache miss for newer version")
	}
}

func TestCache_StatOperations(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()

	// Missing stat reads as zero
	val, err := cache.GetStat(ctx, "transcripts_created")
	if err != nil {
		t.Fatalf("GetStat failed: %v", err)
	}
	if val != 0 {
		t.Errorf("Expected 0 for missing stat, got %d", val)
	}

	if err := cache.IncrementStat(ctx, "transcripts_created"); err != nil {
		t.Fatalf("IncrementStat failed: %v", err)
	}
	if err := cache.IncrementStat(ctx, "transcripts_created"); err != nil {
		t.Fatalf("IncrementStat failed: %v", err)
	}

	val, err = cache.GetStat(ctx, "transcripts_created")
	if err != nil {
		t.Fatalf("GetStat failed: %v", err)
	}
	if val != 2 {
		t.Errorf("Expected stat to be 2, got %d", val)
	}
}

func TestCache_DeletePattern(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()

	for _, id := range []string{"a1", "a2", "a3"} {
		asset := &models.MediaAsset{ID: id, Status: models.AssetStatusPending}
		if err := cache.SetAssetStatus(ctx, asset, time.Minute); err != nil {
			t.Fatalf("SetAssetStatus failed: %v", err)
		}
	}

	if err := cache.DeletePattern(ctx, "asset:status:*"); err != nil {
		t.Fatalf("DeletePattern failed: %v", err)
	}

	for _, id := range []string{"a1", "a2", "a3"} {
		cached, err := cache.GetAssetStatus(ctx, id)
		if err != nil {
			t.Fatalf("GetAssetStatus failed: %v", err)
		}
		if cached != nil {
			t.Errorf("Expected %s to be deleted", id)
		}
	}
}
