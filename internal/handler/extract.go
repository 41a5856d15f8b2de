package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jobtrack-ai/jobtrack-api/internal/model"
)

type JobExtractor interface {
	Extract(ctx context.Context, text string) model.ExtractedJob
}

type ExtractHandler struct {
	extractor JobExtractor
}

func NewExtractHandler(extractor JobExtractor) *ExtractHandler {
	return &ExtractHandler{extractor: extractor}
}

// Extract handles POST /extract
// Turns pasted posting text into application fields. Never fails on AI
// errors; the response is a best-effort record either way.
func (h *ExtractHandler) Extract(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Text is required"})
		return
	}

	job := h.extractor.Extract(c.Request.Context(), req.Text)
	log.Info().
		Str("company", job.Company).
		Str("job_title", job.JobTitle).
		Int("chars", len(req.Text)).
		Msg("Job posting extracted")

	c.JSON(http.StatusOK, job)
}
