package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"site-admin-backend/internal/models"
	"site-admin-backend/internal/services"
)

type SiteHandler struct {
	registration *services.RegistrationService
	listing      *services.ListingService
	sites        *services.SiteService
	deletion     *services.DeletionService
}

func NewSiteHandler(registration *services.RegistrationService, listing *services.ListingService, sites *services.SiteService, deletion *services.DeletionService) *SiteHandler {
	return &SiteHandler{
		registration: registration,
		listing:      listing,
		sites:        sites,
		deletion:     deletion,
	}
}

// Register godoc
// @Summary     Register a site
// @Description Creates the site, its operational info and its promotions as one unit.
// @Description If a later insert fails the site row is removed again.
// @Tags        sites
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.RegisterSiteRequest true "Registration wizard payload"
// @Success     201 {object} models.Result
// @Failure     400 {object} models.Result
// @Failure     502 {object} models.Result
// @Router      /sites [post]
func (h *SiteHandler) Register(c *gin.Context) {
	var req models.RegisterSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "RegisterSite", err)
		return
	}

	site, err := h.registration.RegisterSite(c.Request.Context(), req)
	if err != nil {
		fail(c, err, false)
		return
	}
	ok(c, http.StatusCreated, site)
}

// List godoc
// @Summary     List sites
// @Description Filtered, paginated listing. totalCount is the size of the filtered set.
// @Tags        sites
// @Produce     json
// @Security    Bearer
// @Param       category  query string false "casino, sports, holdem, sport or mixed"
// @Param       status    query string false "active, suspended or closed"
// @Param       search    query string false "Case-insensitive substring of name or url"
// @Param       page      query int    false "1-based page" default(1)
// @Param       page_size query int    false "Rows per page, at most 100" default(20)
// @Success     200 {object} models.ListResult
// @Failure     400 {object} models.ListResult
// @Router      /sites [get]
func (h *SiteHandler) List(c *gin.Context) {
	var (
		filter models.SiteFilter
		pg     Pagination
	)
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "ListSites", err)
		return
	}
	if err := c.ShouldBindQuery(&pg); err != nil {
		badRequest(c, "ListSites", err)
		return
	}
	page, size := pg.normalized()

	res, err := h.listing.ListSites(c.Request.Context(), filter, page, size)
	if err != nil {
		fail(c, err, true)
		return
	}
	okList(c, res.Data, res.TotalCount)
}

// Counts godoc
// @Summary     Site counts per status tab
// @Tags        sites
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Result
// @Router      /sites/counts [get]
func (h *SiteHandler) Counts(c *gin.Context) {
	counts, err := h.listing.StatusCounts(c.Request.Context())
	if err != nil {
		fail(c, err, false)
		return
	}
	ok(c, http.StatusOK, counts)
}

// Get godoc
// @Summary     Get a site
// @Tags        sites
// @Produce     json
// @Security    Bearer
// @Param       site_id path string true "Site ID (UUID)"
// @Success     200 {object} models.Result
// @Failure     404 {object} models.Result
// @Router      /sites/{site_id} [get]
func (h *SiteHandler) Get(c *gin.Context) {
	id, valid := pathID(c, "site_id")
	if !valid {
		return
	}
	site, err := h.sites.GetSite(c.Request.Context(), id)
	if err != nil {
		fail(c, err, false)
		return
	}
	ok(c, http.StatusOK, site)
}

// Update godoc
// @Summary     Update a site
// @Description Partial update. Replacing or clearing the logo deletes the previous file.
// @Tags        sites
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       site_id path string true "Site ID (UUID)"
// @Param       request body models.SitePatch true "Fields to change"
// @Success     200 {object} models.Result
// @Failure     400 {object} models.Result
// @Failure     404 {object} models.Result
// @Router      /sites/{site_id} [patch]
func (h *SiteHandler) Update(c *gin.Context) {
	id, valid := pathID(c, "site_id")
	if !valid {
		return
	}
	var patch models.SitePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "UpdateSite", err)
		return
	}

	site, err := h.sites.UpdateSite(c.Request.Context(), id, patch)
	if err != nil {
		fail(c, err, false)
		return
	}
	ok(c, http.StatusOK, site)
}

// Delete godoc
// @Summary     Delete a site
// @Description Deletes the logo file, then the site. Operational info, promotions and
// @Description events are removed by the store cascade. Event thumbnails are kept.
// @Tags        sites
// @Produce     json
// @Security    Bearer
// @Param       site_id path string true "Site ID (UUID)"
// @Success     200 {object} models.Result
// @Failure     404 {object} models.Result
// @Router      /sites/{site_id} [delete]
func (h *SiteHandler) Delete(c *gin.Context) {
	id, valid := pathID(c, "site_id")
	if !valid {
		return
	}
	if err := h.deletion.DeleteSite(c.Request.Context(), id); err != nil {
		fail(c, err, false)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": id})
}

// PreviewDelete godoc
// @Summary     Preview a site deletion
// @Tags        sites
// @Produce     json
// @Security    Bearer
// @Param       site_id path string true "Site ID (UUID)"
// @Success     200 {object} models.Result
// @Failure     404 {object} models.Result
// @Router      /sites/{site_id}/deletion-preview [get]
func (h *SiteHandler) PreviewDelete(c *gin.Context) {
	id, valid := pathID(c, "site_id")
	if !valid {
		return
	}
	preview, err := h.deletion.PreviewDeletion(c.Request.Context(), id)
	if err != nil {
		fail(c, err, false)
		return
	}
	ok(c, http.StatusOK, preview)
}
