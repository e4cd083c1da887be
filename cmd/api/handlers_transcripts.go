package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anshulkhatri/studyscribe/internal/export"
	"github.com/anshulkhatri/studyscribe/internal/metrics"
	"github.com/anshulkhatri/studyscribe/pkg/models"
	"github.com/gin-gonic/gin"
)

const (
	transcriptCacheTTL = 10 * time.Minute
	exportCacheTTL     = time.Hour
)

// loadTranscript reads a transcript cache-first, falling back to the
// database on a miss.
func (api *API) loadTranscript(c *gin.Context, transcriptID string) (*models.Transcript, bool) {
	ctx := c.Request.Context()

	transcript, err := api.cache.GetTranscript(ctx, transcriptID)
	if err != nil {
		api.logger.WithError(err).Warn("transcript cache read failed")
	}
	metrics.RecordCacheAccess("transcript", transcript != nil)

	if transcript == nil {
		transcript, err = api.transcripts.GetTranscript(ctx, transcriptID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "transcript not found"})
				return nil, false
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get transcript"})
			return nil, false
		}
		if err := api.cache.SetTranscript(ctx, transcript, transcriptCacheTTL); err != nil {
			api.logger.WithError(err).Warn("transcript cache write failed")
		}
	}

	if !canAccess(c, transcript.OwnerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "transcript not found"})
		return nil, false
	}
	return transcript, true
}

func (api *API) getTranscript(c *gin.Context) {
	transcript, ok := api.loadTranscript(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, transcript)
}

func (api *API) getTranscriptByAsset(c *gin.Context) {
	transcript, err := api.transcripts.GetTranscriptByAssetID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transcript not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get transcript"})
		return
	}
	if !canAccess(c, transcript.OwnerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "transcript not found"})
		return
	}
	c.JSON(http.StatusOK, transcript)
}

type editSegmentRequest struct {
	Text string `json:"text" binding:"required"`
}

// editSegment replaces the text of one segment. Each edit bumps the
// transcript version and invalidates the cached copy.
func (api *API) editSegment(c *gin.Context) {
	transcriptID := c.Param("id")
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "segment index must be an integer"})
		return
	}

	var req editSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	if _, ok := api.loadTranscript(c, transcriptID); !ok {
		return
	}

	updated, err := api.transcripts.EditSegment(c.Request.Context(), transcriptID, index, req.Text)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("segment %d not found", index)})
			return
		}
		api.logger.ErrorWithErr("failed to edit segment", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to edit segment"})
		return
	}

	if err := api.cache.DeleteTranscript(c.Request.Context(), transcriptID); err != nil {
		api.logger.WithError(err).Warn("transcript cache invalidation failed")
	}

	c.JSON(http.StatusOK, updated)
}

type highlightRequest struct {
	Highlighted bool   `json:"highlighted"`
	Color       string `json:"color"`
	Note        string `json:"note"`
}

func (api *API) setHighlight(c *gin.Context) {
	transcriptID := c.Param("id")
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "segment index must be an integer"})
		return
	}

	var req highlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if _, ok := api.loadTranscript(c, transcriptID); !ok {
		return
	}

	updated, err := api.transcripts.SetHighlight(c.Request.Context(), transcriptID, index, req.Highlighted, req.Color, req.Note)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("segment %d not found", index)})
			return
		}
		api.logger.ErrorWithErr("failed to set highlight", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set highlight"})
		return
	}

	if err := api.cache.DeleteTranscript(c.Request.Context(), transcriptID); err != nil {
		api.logger.WithError(err).Warn("transcript cache invalidation failed")
	}

	c.JSON(http.StatusOK, updated)
}

func (api *API) searchTranscript(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	if _, ok := api.loadTranscript(c, c.Param("id")); !ok {
		return
	}

	segments, err := api.transcripts.SearchSegments(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		api.logger.ErrorWithErr("failed to search transcript", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search transcript"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"query": query, "segments": segments, "count": len(segments)})
}

// exportTranscript renders the transcript in the requested format. Renders
// are cached per transcript version so an edit never serves a stale export.
func (api *API) exportTranscript(c *gin.Context) {
	format := c.DefaultQuery("format", export.FormatTXT)
	ctx := c.Request.Context()

	contentType, err := export.ContentType(format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transcript, ok := api.loadTranscript(c, c.Param("id"))
	if !ok {
		return
	}

	data, err := api.cache.GetExport(ctx, transcript.ID, transcript.Version, format)
	if err != nil {
		api.logger.WithError(err).Warn("export cache read failed")
	}
	metrics.RecordCacheAccess("export", data != nil)

	if data == nil {
		rendering, err := export.Render(transcript, format)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render transcript"})
			return
		}
		data = rendering.Data
		if err := api.cache.SetExport(ctx, transcript.ID, transcript.Version, format, data, exportCacheTTL); err != nil {
			api.logger.WithError(err).Warn("export cache write failed")
		}
	}

	if err := api.transcripts.TouchRenderedAt(ctx, transcript.ID, format); err != nil {
		api.logger.WithError(err).Warn("failed to record export timestamp")
	}
	metrics.RecordExport(format)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(transcript.ID, format)))
	c.Data(http.StatusOK, contentType, data)
}
