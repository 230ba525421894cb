package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/amarfts/ph-scheduler/internal/posts/service"
	"github.com/amarfts/ph-scheduler/internal/posts/transport"
	"github.com/amarfts/ph-scheduler/platform/httpkit"
	"github.com/amarfts/ph-scheduler/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid post ID"
)

// Handler handles HTTP requests for publications.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new posts handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Generate runs the scheduling pipeline for all pharmacies.
// POST /api/v1/admin/posts/generate
func (h *Handler) Generate(c *gin.Context) {
	var req transport.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// List retrieves all publications with the derived status view.
// GET /api/v1/admin/posts
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ForcePublish posts a scheduled publication immediately.
// POST /api/v1/admin/posts/:id/publish
func (h *Handler) ForcePublish(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.ForcePublish(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Cancel cancels a scheduled publication.
// DELETE /api/v1/admin/posts/:id
func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAll removes every publication record.
// DELETE /api/v1/admin/posts
func (h *Handler) DeleteAll(c *gin.Context) {
	if err := h.svc.DeleteAll(c.Request.Context()); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMessage returns the shared publication message.
// GET /api/v1/admin/posts/message
func (h *Handler) GetMessage(c *gin.Context) {
	result, err := h.svc.GetMessage(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateMessage creates or updates the shared publication message.
// PUT /api/v1/admin/posts/message
func (h *Handler) UpdateMessage(c *gin.Context) {
	var req transport.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateMessage(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
