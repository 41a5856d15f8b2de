package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jobtrack-ai/jobtrack-api/internal/model"
	"github.com/jobtrack-ai/jobtrack-api/internal/repository"
)

// ApplicationStore is the scoped application CRUD the handlers need
type ApplicationStore interface {
	Create(ctx context.Context, a *model.Application) (*model.Application, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Application, error)
	FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Application, error)
	Update(ctx context.Context, a *model.Application) (*model.Application, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type ApplicationHandler struct {
	apps ApplicationStore
}

func NewApplicationHandler(apps ApplicationStore) *ApplicationHandler {
	return &ApplicationHandler{apps: apps}
}

// List returns the caller's applications, most recently applied first
// GET /applications
func (h *ApplicationHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	apps, err := h.apps.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list applications")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch applications"})
		return
	}
	if apps == nil {
		apps = []model.Application{}
	}

	c.JSON(http.StatusOK, apps)
}

// Get returns one application
// GET /applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, appID, ok := h.ids(c)
	if !ok {
		return
	}

	app, err := h.apps.FindByID(c.Request.Context(), appID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get application")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch application"})
		return
	}
	if app == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		return
	}

	c.JSON(http.StatusOK, app)
}

// Create adds an application. Company and job title are required.
// POST /applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	var patch model.ApplicationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if !patch.HasRequired() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Company and Job Title are required"})
		return
	}

	app, err := patch.Apply(model.Application{UserID: userID, Status: model.StatusApplied})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	created, err := h.apps.Create(c.Request.Context(), &app)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create application")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create application"})
		return
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("application_id", created.ID.String()).
		Msg("Application created")

	c.JSON(http.StatusCreated, created)
}

// Update merges the supplied fields onto the stored application
// PUT /applications/:id
func (h *ApplicationHandler) Update(c *gin.Context) {
	userID, appID, ok := h.ids(c)
	if !ok {
		return
	}

	var patch model.ApplicationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	existing, err := h.apps.FindByID(c.Request.Context(), appID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get application")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update application"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		return
	}

	merged, err := patch.Apply(*existing)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	updated, err := h.apps.Update(c.Request.Context(), &merged)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to update application")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update application"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete removes an application
// DELETE /applications/:id
func (h *ApplicationHandler) Delete(c *gin.Context) {
	userID, appID, ok := h.ids(c)
	if !ok {
		return
	}

	deleted, err := h.apps.Delete(c.Request.Context(), appID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete application")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete application"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application deleted successfully"})
}

// ids resolves the caller and the :id param, writing the error response itself
func (h *ApplicationHandler) ids(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid application ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, appID, true
}
