package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/anshulkhatri/studyscribe/internal/database"
	"github.com/anshulkhatri/studyscribe/internal/metrics"
	"github.com/anshulkhatri/studyscribe/internal/middleware"
	"github.com/anshulkhatri/studyscribe/internal/storage"
	"github.com/anshulkhatri/studyscribe/internal/transcriber"
	"github.com/anshulkhatri/studyscribe/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ownerID returns the caller's identity as a nullable owner reference.
func ownerID(c *gin.Context) *string {
	if userID, ok := middleware.GetUserID(c); ok {
		return &userID
	}
	return nil
}

// canAccess hides assets owned by someone else. Anonymous assets are visible
// to everyone.
func canAccess(c *gin.Context, owner *string) bool {
	if owner == nil {
		return true
	}
	userID, ok := middleware.GetUserID(c)
	return ok && userID == *owner
}

// submitMedia accepts a multipart file upload, stores the file and enqueues
// a transcription job. The asset is returned in pending state; clients follow
// up on GET /media/:id/status.
func (api *API) submitMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	kind := c.PostForm("kind")
	if kind == "" {
		kind = models.AssetKindAudio
	}
	languageHint := c.PostForm("language_hint")
	if languageHint == "" {
		languageHint = models.LanguageAuto
	}

	asset := &models.MediaAsset{
		ID:           uuid.New().String(),
		OwnerID:      ownerID(c),
		Filename:     filepath.Base(file.Filename),
		Kind:         kind,
		Size:         file.Size,
		MimeType:     file.Header.Get("Content-Type"),
		LanguageHint: languageHint,
		Status:       models.AssetStatusPending,
	}

	if err := asset.ValidateSubmission(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tempPath := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save uploaded file"})
		return
	}
	defer os.Remove(tempPath)

	asset.StorageKey = storage.MediaKey(asset.ID, asset.Filename)
	if err := api.storage.UploadFile(c.Request.Context(), asset.StorageKey, tempPath); err != nil {
		api.logger.ErrorWithErr("failed to upload media to storage", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store media"})
		return
	}

	if err := api.assets.CreateAsset(c.Request.Context(), asset); err != nil {
		api.logger.ErrorWithErr("failed to create asset", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create asset"})
		return
	}

	if err := api.queue.PublishJob(c.Request.Context(), asset.ID); err != nil {
		api.logger.ErrorWithErr("failed to enqueue transcription job", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	metrics.RecordMediaSubmission(asset.Kind, asset.Size)
	c.JSON(http.StatusCreated, asset)
}

type importRequest struct {
	SourceURL    string `json:"source_url" binding:"required"`
	LanguageHint string `json:"language_hint"`
}

// importMedia registers an external video URL for caption-based
// transcription. No media bytes are stored.
func (api *API) importMedia(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_url is required"})
		return
	}

	videoID, err := transcriber.ExtractVideoID(req.SourceURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported source URL: %v", err)})
		return
	}

	languageHint := req.LanguageHint
	if languageHint == "" {
		languageHint = models.LanguageAuto
	}

	asset := &models.MediaAsset{
		ID:           uuid.New().String(),
		OwnerID:      ownerID(c),
		Filename:     videoID,
		Kind:         models.AssetKindVideo,
		SourceURL:    req.SourceURL,
		LanguageHint: languageHint,
		Status:       models.AssetStatusPending,
	}

	if err := asset.ValidateSubmission(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := api.assets.CreateAsset(c.Request.Context(), asset); err != nil {
		api.logger.ErrorWithErr("failed to create asset", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create asset"})
		return
	}

	if err := api.queue.PublishJob(c.Request.Context(), asset.ID); err != nil {
		api.logger.ErrorWithErr("failed to enqueue transcription job", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	metrics.RecordMediaSubmission(asset.Kind, 0)
	c.JSON(http.StatusCreated, asset)
}

func (api *API) listMedia(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"assets": []*models.MediaAsset{}, "count": 0})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	assets, err := api.assets.ListAssetsByOwner(c.Request.Context(), userID, limit, offset)
	if err != nil {
		api.logger.ErrorWithErr("failed to list assets", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list assets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assets": assets, "count": len(assets)})
}

func (api *API) getMedia(c *gin.Context) {
	asset, err := api.assets.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get asset"})
		return
	}
	if !canAccess(c, asset.OwnerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}
	c.JSON(http.StatusOK, asset)
}

// getMediaStatus is the polling endpoint. Reads go through the redis cache
// first; a miss falls back to the database and repopulates the cache with a
// short TTL so transitions are picked up promptly.
func (api *API) getMediaStatus(c *gin.Context) {
	assetID := c.Param("id")
	ctx := c.Request.Context()

	asset, err := api.cache.GetAssetStatus(ctx, assetID)
	if err != nil {
		api.logger.WithError(err).Warn("status cache read failed")
	}
	metrics.RecordCacheAccess("status", asset != nil)

	if asset == nil {
		asset, err = api.assets.GetAsset(ctx, assetID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get asset"})
			return
		}
		if err := api.cache.SetAssetStatus(ctx, asset, api.cfg.Redis.StatusTTL); err != nil {
			api.logger.WithError(err).Warn("status cache write failed")
		}
	}

	if !canAccess(c, asset.OwnerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}

	resp := gin.H{
		"id":     asset.ID,
		"status": asset.Status,
	}
	if asset.ProcessingError != "" {
		resp["processing_error"] = asset.ProcessingError
	}
	if asset.TranscriptID != nil {
		resp["transcript_id"] = *asset.TranscriptID
	}
	if !asset.IsTerminal() {
		resp["poll_interval_ms"] = api.cfg.Polling.Interval.Milliseconds()
	}
	c.JSON(http.StatusOK, resp)
}

// deleteMedia removes the asset record, its stored objects and any cached
// status entry.
func (api *API) deleteMedia(c *gin.Context) {
	assetID := c.Param("id")
	ctx := c.Request.Context()

	asset, err := api.assets.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get asset"})
		return
	}
	if !canAccess(c, asset.OwnerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}

	if asset.StorageKey != "" {
		if err := api.storage.DeletePrefix(ctx, "media/"+assetID+"/"); err != nil {
			api.logger.ErrorWithErr("failed to delete stored media", err)
		}
	}

	if err := api.assets.DeleteAsset(ctx, assetID); err != nil {
		api.logger.ErrorWithErr("failed to delete asset", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete asset"})
		return
	}

	if err := api.cache.DeleteAssetStatus(ctx, assetID); err != nil {
		api.logger.WithError(err).Warn("status cache invalidation failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": "asset deleted", "id": assetID})
}

// resubmitMedia re-queues a failed asset. Only failed assets qualify; the
// compare-and-set transition rejects everything else.
func (api *API) resubmitMedia(c *gin.Context) {
	assetID := c.Param("id")
	ctx := c.Request.Context()

	asset, err := api.assets.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get asset"})
		return
	}
	if !canAccess(c, asset.OwnerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}

	err = api.assets.TransitionStatus(ctx, assetID,
		models.AssetStatusFailed, models.AssetStatusPending, database.TransitionFields{})
	if err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{
				"error": fmt.Sprintf("asset is %s, only failed assets can be resubmitted", asset.Status),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resubmit asset"})
		return
	}

	if err := api.cache.DeleteAssetStatus(ctx, assetID); err != nil {
		api.logger.WithError(err).Warn("status cache invalidation failed")
	}

	if err := api.queue.PublishJob(ctx, assetID); err != nil {
		api.logger.ErrorWithErr("failed to enqueue transcription job", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": assetID, "status": models.AssetStatusPending})
}
