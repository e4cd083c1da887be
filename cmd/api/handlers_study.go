package main

import (
	"errors"
	"net/http"

	"github.com/anshulkhatri/studyscribe/pkg/models"
	"github.com/gin-gonic/gin"
)

// generateStudyContent runs the study artifact generation for a transcript
// and persists the result. Every call produces a fresh study material record;
// older generations stay queryable.
func (api *API) generateStudyContent(c *gin.Context) {
	ctx := c.Request.Context()

	transcript, ok := api.loadTranscript(c, c.Param("id"))
	if !ok {
		return
	}

	material, insight, err := api.generator.Generate(ctx, transcript)
	if err != nil {
		if errors.Is(err, models.ErrContentTooShort) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		api.logger.ErrorWithErr("study content generation failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate study content"})
		return
	}

	if err := api.study.CreateStudyMaterial(ctx, material); err != nil {
		api.logger.ErrorWithErr("failed to save study material", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save study material"})
		return
	}

	if insight != nil {
		if err := api.study.CreateInsight(ctx, insight); err != nil {
			api.logger.ErrorWithErr("failed to save analysis insight", err)
		}
	}

	resp := gin.H{"study_material": material}
	if insight != nil {
		resp["insight"] = insight
	}
	c.JSON(http.StatusCreated, resp)
}

func (api *API) listStudyMaterials(c *gin.Context) {
	if _, ok := api.loadTranscript(c, c.Param("id")); !ok {
		return
	}

	materials, err := api.study.ListStudyMaterialsByTranscript(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.logger.ErrorWithErr("failed to list study materials", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list study materials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"study_materials": materials, "count": len(materials)})
}

func (api *API) getStudyMaterial(c *gin.Context) {
	material, err := api.study.GetStudyMaterial(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "study material not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get study material"})
		return
	}
	c.JSON(http.StatusOK, material)
}

func (api *API) getInsight(c *gin.Context) {
	if _, ok := api.loadTranscript(c, c.Param("id")); !ok {
		return
	}

	insight, err := api.study.GetLatestInsight(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no insight available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get insight"})
		return
	}
	c.JSON(http.StatusOK, insight)
}
