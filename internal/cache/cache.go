package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// Cache provides caching functionality using Redis
type Cache struct {
	client *redis.Client
}

// NewCache creates a new cache instance
func NewCache(host string, port int, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Asset Status Cache Operations
//
// Status polling is the hottest read path; caching keeps it off Postgres.
// Terminal statuses may be cached long, pending and processing must use a
// short TTL so poll responses never lag the state machine far behind.

// SetAssetStatus caches the poll response for an asset
func (c *Cache) SetAssetStatus(ctx context.Context, asset *models.MediaAsset, ttl time.Duration) error {
	data, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("failed to marshal asset: %w", err)
	}

	key := fmt.Sprintf("asset:status:%s", asset.ID)
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetAssetStatus retrieves a cached asset
func (c *Cache) GetAssetStatus(ctx context.Context, assetID string) (*models.MediaAsset, error) {
	key := fmt.Sprintf("asset:status:%s", assetID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset from cache: %w", err)
	}

	var asset models.MediaAsset
	if err := json.Unmarshal(data, &asset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal asset: %w", err)
	}

	return &asset, nil
}

// DeleteAssetStatus invalidates a cached asset after any status transition
func (c *Cache) DeleteAssetStatus(ctx context.Context, assetID string) error {
	key := fmt.Sprintf("asset:status:%s", assetID)
	return c.client.Del(ctx, key).Err()
}

// Transcript Cache Operations

// SetTranscript caches a transcript
func (c *Cache) SetTranscript(ctx context.Context, transcript *models.Transcript, ttl time.Duration) error {
	data, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	key := fmt.Sprintf("transcript:%s", transcript.ID)
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetTranscript retrieves a cached transcript
func (c *Cache) GetTranscript(ctx context.Context, transcriptID string) (*models.Transcript, error) {
	key := fmt.Sprintf("transcript:%s", transcriptID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript from cache: %w", err)
	}

	var transcript models.Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}

	return &transcript, nil
}

// DeleteTranscript invalidates a cached transcript after an edit or highlight
func (c *Cache) DeleteTranscript(ctx context.Context, transcriptID string) error {
	key := fmt.Sprintf("transcript:%s", transcriptID)
	return c.client.Del(ctx, key).Err()
}

// Export Cache Operations

// SetExport caches a rendered export document
func (c *Cache) SetExport(ctx context.Context, transcriptID string, version int, format string, data []byte, ttl time.Duration) error {
	key := fmt.Sprintf("export:%s:v%d:%s", transcriptID, version, format)
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetExport retrieves a cached export document. The version in the key makes
// stale renders unreachable after an edit.
func (c *Cache) GetExport(ctx context.Context, transcriptID string, version int, format string) ([]byte, error) {
	key := fmt.Sprintf("export:%s:v%d:%s", transcriptID, version, format)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export from cache: %w", err)
	}

	return data, nil
}

// Stats Operations

// IncrementStat increments a counter stat
func (c *Cache) IncrementStat(ctx context.Context, stat string) error {
	key := fmt.Sprintf("stats:%s", stat)
	return c.client.Incr(ctx, key).Err()
}

// GetStat retrieves a counter stat
func (c *Cache) GetStat(ctx context.Context, stat string) (int64, error) {
	key := fmt.Sprintf("stats:%s", stat)
	val, err := c.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// Utility Operations

// DeletePattern deletes all keys matching a pattern
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Exists checks if a key exists
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
