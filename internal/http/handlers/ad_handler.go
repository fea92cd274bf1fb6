package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/leadpilot/go-leadgen-backend/internal/domain"
	"github.com/leadpilot/go-leadgen-backend/internal/services"
)

// AdHandler exposes the synced ad catalog and the manual sync trigger.
type AdHandler struct {
	Ads *services.AdService
}

func NewAdHandler(svc *services.AdService) *AdHandler { return &AdHandler{Ads: svc} }

// adListItem is an Ad enriched with whether a message template is attached.
type adListItem struct {
	domain.Ad
	HasTemplate bool `json:"has_template"`
}

// List returns all synced ads, optionally filtered by is_active, each
// annotated with has_template.
//
// @Summary      List synced ads
// @Tags         ads
// @Produce      json
// @Param        is_active query bool false "filter by active flag"
// @Success      200 {array} adListItem
// @Failure      500 {object} ErrorResponse
// @Router       /ads [get]
func (h *AdHandler) List(c *gin.Context) {
	var isActive *bool
	if raw, ok := c.GetQuery("is_active"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "is_active must be a boolean")
			return
		}
		isActive = &v
	}

	ads, withTemplate, err := h.Ads.List(c.Request.Context(), isActive)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list ads")
		return
	}

	items := make([]adListItem, 0, len(ads))
	for _, ad := range ads {
		items = append(items, adListItem{Ad: ad, HasTemplate: withTemplate[ad.ID]})
	}
	ok(c, http.StatusOK, items)
}

// Get returns a single ad by its internal ID.
//
// @Summary      Get an ad
// @Tags         ads
// @Produce      json
// @Param        id path string true "ad ID"
// @Success      200 {object} domain.Ad
// @Failure      404 {object} ErrorResponse
// @Router       /ads/{id} [get]
func (h *AdHandler) Get(c *gin.Context) {
	ad, err := h.Ads.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrAdNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "ad not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load ad")
	default:
		ok(c, http.StatusOK, ad)
	}
}

// Sync triggers an immediate ad sync against the Graph API and reports the
// per-run statistics.
//
// @Summary      Sync ads from Facebook now
// @Tags         ads
// @Produce      json
// @Success      200 {object} services.SyncStats
// @Failure      502 {object} ErrorResponse
// @Router       /ads/sync [post]
func (h *AdHandler) Sync(c *gin.Context) {
	stats, err := h.Ads.Sync(c.Request.Context())
	switch {
	case errors.Is(err, services.ErrUpstream):
		fail(c, http.StatusBadGateway, ErrCodeUpstreamFailed, "failed to fetch ads from facebook")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "ad sync failed")
	default:
		ok(c, http.StatusOK, stats)
	}
}

// Delete removes an ad and, via cascade, its template and lead references.
//
// @Summary      Delete an ad
// @Tags         ads
// @Param        id path string true "ad ID"
// @Success      204 "deleted"
// @Failure      404 {object} ErrorResponse
// @Router       /ads/{id} [delete]
func (h *AdHandler) Delete(c *gin.Context) {
	err := h.Ads.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrAdNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "ad not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not delete ad")
	default:
		noContent(c)
	}
}
