package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anshulkhatri/studyscribe/internal/metrics"
	"github.com/anshulkhatri/studyscribe/internal/storage"
	"github.com/anshulkhatri/studyscribe/internal/upload"
	"github.com/anshulkhatri/studyscribe/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type initiateUploadRequest struct {
	Filename  string `json:"filename" binding:"required"`
	TotalSize int64  `json:"total_size" binding:"required"`
}

// initiateUpload opens a chunked upload session for a large recording.
func (api *API) initiateUpload(c *gin.Context) {
	var req initiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and total_size are required"})
		return
	}

	session, err := api.uploads.Initiate(req.Filename, req.TotalSize)
	if err != nil {
		if models.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		api.logger.ErrorWithErr("failed to initiate upload session", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate upload"})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// uploadPart receives one raw part body for an open session.
func (api *API) uploadPart(c *gin.Context) {
	partNumber, err := strconv.Atoi(c.Param("part"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "part number must be an integer"})
		return
	}

	part, err := api.uploads.PutPart(c.Param("id"), partNumber, c.Request.Body)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "upload session not found"})
		case models.IsValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			api.logger.ErrorWithErr("failed to store upload part", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store part"})
		}
		return
	}

	c.JSON(http.StatusOK, part)
}

func (api *API) getUploadSession(c *gin.Context) {
	session, err := api.uploads.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

func (api *API) abortUpload(c *gin.Context) {
	if err := api.uploads.Abort(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "upload aborted", "id": c.Param("id")})
}

type completeUploadRequest struct {
	Kind         string `json:"kind"`
	MimeType     string `json:"mime_type" binding:"required"`
	LanguageHint string `json:"language_hint"`
}

// completeUpload assembles the parts, registers the media asset and
// enqueues its transcription job, same as a direct upload would.
func (api *API) completeUpload(c *gin.Context) {
	sessionID := c.Param("id")

	var req completeUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mime_type is required"})
		return
	}

	session, err := api.uploads.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload session not found"})
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = models.AssetKindRecording
	}
	languageHint := req.LanguageHint
	if languageHint == "" {
		languageHint = models.LanguageAuto
	}

	asset := &models.MediaAsset{
		ID:           uuid.New().String(),
		OwnerID:      ownerID(c),
		Filename:     session.Filename,
		Kind:         kind,
		Size:         session.TotalSize,
		MimeType:     req.MimeType,
		LanguageHint: languageHint,
		Status:       models.AssetStatusPending,
	}
	if err := asset.ValidateSubmission(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	finalPath, err := api.uploads.Complete(sessionID)
	if err != nil {
		if models.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		api.logger.ErrorWithErr("failed to assemble upload", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assemble upload"})
		return
	}
	defer api.uploads.Remove(sessionID)

	asset.StorageKey = storage.MediaKey(asset.ID, asset.Filename)
	if err := api.storage.UploadFile(c.Request.Context(), asset.StorageKey, finalPath); err != nil {
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
