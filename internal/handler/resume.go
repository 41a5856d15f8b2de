package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jobtrack-ai/jobtrack-api/internal/model"
	"github.com/jobtrack-ai/jobtrack-api/internal/repository"
	"github.com/jobtrack-ai/jobtrack-api/internal/service"
	"github.com/jobtrack-ai/jobtrack-api/internal/storage"
)

// ResumeStore is the scoped resume metadata store the handlers need
type ResumeStore interface {
	Create(ctx context.Context, userID uuid.UUID, fileName, originalName string) (*model.Resume, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Resume, error)
	FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Resume, error)
	SetPrimary(ctx context.Context, userID, id uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type ResumeMatcher interface {
	Match(ctx context.Context, req service.MatchRequest) (model.MatchResult, error)
}

type ResumeHandler struct {
	resumes   ResumeStore
	files     storage.FileStore
	matcher   ResumeMatcher
	maxUpload int64
}

func NewResumeHandler(resumes ResumeStore, files storage.FileStore, matcher ResumeMatcher, maxUpload int64) *ResumeHandler {
	return &ResumeHandler{resumes: resumes, files: files, matcher: matcher, maxUpload: maxUpload}
}

// Upload handles POST /resumes (multipart, field "resume", PDF only)
func (h *ResumeHandler) Upload(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	tooLarge := fmt.Sprintf("File too large. Maximum size is %dMB.", h.maxUpload>>20)

	header, err := c.FormFile("resume")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusBadRequest, gin.H{"message": tooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded. Use form field 'resume'."})
		return
	}

	if header.Size > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"message": tooLarge})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") && !strings.HasPrefix(contentType, "application/pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only PDF files are allowed"})
		return
	}

	file, err := header.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read uploaded file"})
		return
	}
	if int64(len(data)) > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"message": tooLarge})
		return
	}

	// Validate PDF magic bytes
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only PDF files are allowed"})
		return
	}

	ctx := c.Request.Context()
	fileName := uuid.NewString() + ".pdf"
	if err := h.files.Save(ctx, fileName, bytes.NewReader(data)); err != nil {
		log.Error().Err(err).Msg("Failed to store resume file")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload resume"})
		return
	}

	resume, err := h.resumes.Create(ctx, userID, fileName, filepath.Base(header.Filename))
	if err != nil {
		log.Error().Err(err).Msg("Failed to save resume metadata")
		if delErr := h.files.Delete(ctx, fileName); delErr != nil {
			log.Warn().Err(delErr).Str("file_name", fileName).Msg("Failed to remove stored file after metadata error")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload resume"})
		return
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("resume_id", resume.ID.String()).
		Int("bytes", len(data)).
		Msg("Resume uploaded")

	c.JSON(http.StatusCreated, resume)
}

// List handles GET /resumes
func (h *ResumeHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	resumes, err := h.resumes.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list resumes")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch resumes"})
		return
	}
	if resumes == nil {
		resumes = []model.Resume{}
	}

	c.JSON(http.StatusOK, resumes)
}

// SetPrimary handles PUT /resumes/:id/primary
func (h *ResumeHandler) SetPrimary(c *gin.Context) {
	userID, resumeID, ok := h.ids(c)
	if !ok {
		return
	}

	err := h.resumes.SetPrimary(c.Request.Context(), userID, resumeID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Resume not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to set primary resume")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to set primary resume"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Primary resume updated"})
}

// Delete handles DELETE /resumes/:id. The file goes first; if that fails
// the row is still removed and the orphaned file is only logged.
func (h *ResumeHandler) Delete(c *gin.Context) {
	userID, resumeID, ok := h.ids(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	resume, err := h.resumes.FindByID(ctx, resumeID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get resume")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete resume"})
		return
	}
	if resume == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Resume not found"})
		return
	}

	if err := h.files.Delete(ctx, resume.FileName); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Warn().Err(err).
			Str("resume_id", resume.ID.String()).
			Str("file_name", resume.FileName).
			Msg("Failed to delete resume file, removing metadata anyway")
	}

	deleted, err := h.resumes.Delete(ctx, resumeID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete resume")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete resume"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "Resume not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resume deleted successfully"})
}

// Download handles GET /resumes/:id/download
func (h *ResumeHandler) Download(c *gin.Context) {
	userID, resumeID, ok := h.ids(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	resume, err := h.resumes.FindByID(ctx, resumeID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get resume")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to download resume"})
		return
	}
	if resume == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Resume not found"})
		return
	}

	rc, err := h.files.Open(ctx, resume.FileName)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "File not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to open resume file")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to download resume"})
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, "application/pdf", rc, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": resume.OriginalName}),
	})
}

// Match handles POST /resumes/:id/match
func (h *ResumeHandler) Match(c *gin.Context) {
	userID, resumeID, ok := h.ids(c)
	if !ok {
		return
	}

	var req struct {
		JobDetails    *model.JobDetails `json:"jobDetails"`
		ApplicationID string            `json:"applicationId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.JobDetails == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Job details are required"})
		return
	}

	matchReq := service.MatchRequest{UserID: userID, ResumeID: resumeID, Job: *req.JobDetails}
	if req.ApplicationID != "" {
		appID, err := uuid.Parse(req.ApplicationID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid application ID"})
			return
		}
		matchReq.ApplicationID = &appID
	}

	result, err := h.matcher.Match(c.Request.Context(), matchReq)
	switch {
	case errors.Is(err, service.ErrResumeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Resume not found"})
		return
	case errors.Is(err, service.ErrResumeFileMissing):
		c.JSON(http.StatusNotFound, gin.H{"message": "Resume file not found on server"})
		return
	case err != nil:
		log.Error().Err(err).Str("resume_id", resumeID.String()).Msg("Resume match failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to analyze resume match"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ResumeHandler) ids(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}

	resumeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid resume ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, resumeID, true
}
