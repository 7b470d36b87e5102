package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"site-admin-backend/internal/models"
	"site-admin-backend/internal/services"
)

type PromotionHandler struct {
	sites *services.SiteService
}

func NewPromotionHandler(sites *services.SiteService) *PromotionHandler {
	return &PromotionHandler{sites: sites}
}

// List godoc
// @Summary     List a site's promotions
// @Tags        promotions
// @Produce     json
// @Security    Bearer
// @Param       site_id path string true "Site ID (UUID)"
// @Success     200 {object} models.Result
// @Router      /sites/{site_id}/promotions [get]
func (h *PromotionHandler) List(c *gin.Context) {
	siteID, valid := pathID(c, "site_id")
	if !valid {
		return
	}
	promos, err := h.sites.ListPromotions(c.Request.Context(), siteID)
	if err != nil {
		fail(c, err, false)
		return
	}
	ok(c, http.StatusOK, promos)
}

// Add godoc
// @Summary     Add a promotion to a site
// @Tags        promotions
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       site_id path string true "Site ID (UUID)"
// @Param       request body models.PromotionInput true "Promotion"
// @Success     201 {object} models.Result
// @Failure     400 {object} models.Result
// @Failure     404 {object} models.Result
// @Router      /sites/{site_id}/promotions [post]
func (h *PromotionHandler) Add(c *gin.Context) {
	siteID, valid := pathID(c, "site_id")
	if !valid {
		return
	}
	var in models.PromotionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "AddPromotion", err)
		return
	}

	promo, err := h.sites.AddPromotion(c.Request.Context(), siteID, in)
	if err != nil {
		fail(c, err, false)
		return
	}
	ok(c, http.StatusCreated, promo)
}

// Update godoc
// @Summary     Update a promotion
// @Tags        promotions
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       promotion_id path string true "Promotion ID (UUID)"
// @Param       request body models.PromotionPatch true "Fields to change"
// @Success     200 {object} models.Result
// @Failure     400 {object} models.Result
// @Failure     404 {object} models.Result
// @Router      /promotions/{promotion_id} [patch]
func (h *PromotionHandler) Update(c *gin.Context) {
	id, valid := pathID(c, "promotion_id")
	if !valid {
		return
	}
	var patch models.PromotionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "UpdatePromotion", err)
		return
	}

	promo, err := h.sites.UpdatePromotion(c.Request.Context(), id, patch)
	if err != nil {
		fail(c, err, false)
		return
	}
	ok(c, http.StatusOK, promo)
}

// Delete godoc
// @Summary     Delete a promotion
// @Tags        promotions
// @Produce     json
// @Security    Bearer
// @Param       promotion_id path string true "Promotion ID (UUID)"
// @Success     200 {object} models.Result
// @Failure     404 {object} models.Result
// @Router      /promotions/{promotion_id} [delete]
func (h *PromotionHandler) Delete(c *gin.Context) {
	id, valid := pathID(c, "promotion_id")
	if !valid {
		return
	}
	if err := h.sites.DeletePromotion(c.Request.Context(), id); err != nil {
		fail(c, err, false)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": id})
}
