package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
	"github.com/leadpilot/go-leadgen-backend/internal/services"
)

// TemplateHandler manages the message templates attached to ads.
type TemplateHandler struct {
	Templates *services.TemplateService
}

func NewTemplateHandler(svc *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{Templates: svc}
}

// createTemplateRequest is the POST body for creating a template.
type createTemplateRequest struct {
	AdID         string            `json:"ad_id" binding:"required"`
	TemplateName string            `json:"template_name" binding:"required"`
	MessageText  string            `json:"message_text" binding:"required"`
	Variables    map[string]string `json:"variables"`
	IsActive     *bool             `json:"is_active"`
}

// updateTemplateRequest is the PUT body; all fields optional.
type updateTemplateRequest struct {
	TemplateName *string            `json:"template_name"`
	MessageText  *string            `json:"message_text"`
	Variables    *map[string]string `json:"variables"`
	IsActive     *bool              `json:"is_active"`
}

// List returns every message template.
//
// @Summary      List message templates
// @Tags         templates
// @Produce      json
// @Success      200 {array} domain.MessageTemplate
// @Failure      500 {object} ErrorResponse
// @Router       /messages [get]
func (h *TemplateHandler) List(c *gin.Context) {
	tpls, err := h.Templates.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list templates")
		return
	}
	ok(c, http.StatusOK, tpls)
}

// Get returns a single template by ID.
//
// @Summary      Get a message template
// @Tags         templates
// @Produce      json
// @Param        id path string true "template ID"
// @Success      200 {object} domain.MessageTemplate
// @Failure      404 {object} ErrorResponse
// @Router       /messages/{id} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, err := h.Templates.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrTemplateNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load template")
	default:
		ok(c, http.StatusOK, tpl)
	}
}

// Create attaches a new template to an ad. Each ad holds at most one
// template; a second create for the same ad answers 409.
//
// @Summary      Create a message template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Success      201 {object} domain.MessageTemplate
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /messages [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ad_id, template_name and message_text are required")
		return
	}

	tpl, err := h.Templates.Create(c.Request.Context(), services.CreateTemplateInput{
		AdID:         req.AdID,
		TemplateName: req.TemplateName,
		MessageText:  req.MessageText,
		Variables:    req.Variables,
		IsActive:     req.IsActive,
	})
	switch {
	case errors.Is(err, services.ErrAdNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "ad not found")
	case errors.Is(err, services.ErrTemplateExists):
		fail(c, http.StatusConflict, ErrCodeConflict, "ad already has a template")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not create template")
	default:
		ok(c, http.StatusCreated, tpl)
	}
}

// Update applies a partial update to a template.
//
// @Summary      Update a message template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        id path string true "template ID"
// @Success      200 {object} domain.MessageTemplate
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /messages/{id} [put]
func (h *TemplateHandler) Update(c *gin.Context) {
	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	var vars *domain.StringMap
	if req.Variables != nil {
		v := domain.StringMap(*req.Variables)
		vars = &v
	}
	tpl, err := h.Templates.Update(c.Request.Context(), c.Param("id"), services.UpdateTemplateInput{
		TemplateName: req.TemplateName,
		MessageText:  req.MessageText,
		Variables:    vars,
		IsActive:     req.IsActive,
	})
	switch {
	case errors.Is(err, services.ErrTemplateNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not update template")
	default:
		ok(c, http.StatusOK, tpl)
	}
}

// Delete removes a template.
//
// @Summary      Delete a message template
// @Tags         templates
// @Param        id path string true "template ID"
// @Success      204 "deleted"
// @Failure      404 {object} ErrorResponse
// @Router       /messages/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	err := h.Templates.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrTemplateNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not delete template")
	default:
		noContent(c)
	}
}

// previewRequest optionally overrides the built-in sample lead data.
type previewRequest struct {
	LeadData map[string]string `json:"lead_data"`
}

// Preview renders a template with sample lead data so the final message can
// be inspected before any lead arrives. The body may supply lead_data to
// override the default sample.
//
// @Summary      Preview a rendered template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        id path string true "template ID"
// @Success      200 {object} services.PreviewResult
// @Failure      404 {object} ErrorResponse
// @Router       /messages/{id}/preview [post]
func (h *TemplateHandler) Preview(c *gin.Context) {
	var req previewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}

	res, err := h.Templates.Preview(c.Request.Context(), c.Param("id"), req.LeadData)
	switch {
	case errors.Is(err, services.ErrTemplateNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not render preview")
	default:
		ok(c, http.StatusOK, res)
	}
}
