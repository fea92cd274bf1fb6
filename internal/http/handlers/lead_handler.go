package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
	"github.com/leadpilot/go-leadgen-backend/internal/services"
	"github.com/leadpilot/go-leadgen-backend/internal/utils"
)

// maxLeadPageSize bounds the page_size query parameter.
const maxLeadPageSize = 200

// LeadHandler exposes the captured-lead audit log.
type LeadHandler struct {
	Leads *services.LeadService
}

func NewLeadHandler(svc *services.LeadService) *LeadHandler { return &LeadHandler{Leads: svc} }

// leadListItem flattens a Lead with its matched ad's name for list views.
type leadListItem struct {
	domain.Lead
	AdName string `json:"ad_name,omitempty"`
}

// leadPage is the paginated list envelope.
type leadPage struct {
	Items    []leadListItem `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// List returns a page of captured leads, newest first, each annotated with
// the matched ad's name when one exists.
//
// @Summary      List captured leads
// @Tags         leads
// @Produce      json
// @Param        page      query int false "page number (default 1)"
// @Param        page_size query int false "page size (default 50, max 200)"
// @Success      200 {object} leadPage
// @Failure      500 {object} ErrorResponse
// @Router       /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	pageSize := utils.AtoiDefault(c.Query("page_size"), 50)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = utils.ClampInt(pageSize, 1, maxLeadPageSize)

	leads, total, err := h.Leads.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list leads")
		return
	}

	items := make([]leadListItem, 0, len(leads))
	for _, l := range leads {
		item := leadListItem{Lead: l}
		if l.Ad != nil {
			item.AdName = l.Ad.AdName
		}
		items = append(items, item)
	}
	ok(c, http.StatusOK, leadPage{Items: items, Total: total, Page: page, PageSize: pageSize})
}

// Get returns a single lead by ID.
//
// @Summary      Get a lead
// @Tags         leads
// @Produce      json
// @Param        id path string true "lead ID"
// @Success      200 {object} domain.Lead
// @Failure      404 {object} ErrorResponse
// @Router       /leads/{id} [get]
func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.Leads.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrLeadNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "lead not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load lead")
	default:
		ok(c, http.StatusOK, lead)
	}
}

// Stats returns aggregate message-delivery statistics.
//
// @Summary      Lead delivery statistics
// @Tags         leads
// @Produce      json
// @Success      200 {object} repo.LeadStats
// @Failure      500 {object} ErrorResponse
// @Router       /leads/stats [get]
func (h *LeadHandler) Stats(c *gin.Context) {
	stats, err := h.Leads.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not compute statistics")
		return
	}
	ok(c, http.StatusOK, stats)
}
