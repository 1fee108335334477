package handler

import (
	"net/http"
	"strconv"

	"cash4edu/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PerksResponse struct {
	Perks []models.Perk `json:"perks"`
}

type RedemptionsResponse struct {
	Redemptions []models.Redemption `json:"redemptions"`
	Page        int                 `json:"page" example:"1"`
}

// ListPerks godoc
// @Summary      List perks
// @Tags         Perks
// @Produce      json
// @Param        category query string false "perk category"
// @Success      200 {object} handler.PerksResponse
// @Failure      502 {object} handler.ErrorResponse
// @Router       /api/perks [get]
func (h *Handler) ListPerks(c *gin.Context) {
	perks, err := h.perks.ListPerks(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, PerksResponse{Perks: perks})
}

// RedeemPerk godoc
// @Summary      Redeem a perk
// @Description  Spends tokens on a perk. The profile is refreshed afterwards so the token balance is current.
// @Tags         Perks
// @Produce      json
// @Param        id path string true "perk id"
// @Success      200 {object} models.Redemption
// @Failure      400 {object} handler.ErrorResponse "not enough tokens"
// @Failure      502 {object} handler.ErrorResponse
// @Router       /api/perks/{id}/redeem [post]
func (h *Handler) RedeemPerk(c *gin.Context) {
	ctx := c.Request.Context()
	r, err := h.perks.RedeemPerk(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.profiles.RefreshUserProfile(ctx, true); err != nil {
		h.logger.Warn("RedeemPerk(): profile refresh after redemption failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, r)
}

// Redemptions godoc
// @Summary      Redemption history
// @Tags         Perks
// @Produce      json
// @Param        page query int false "page, from 1"
// @Success      200 {object} handler.RedemptionsResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      502 {object} handler.ErrorResponse
// @Router       /api/redemptions [get]
func (h *Handler) Redemptions(c *gin.Context) {
	page := 1
	if s := c.Query("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "page must be a positive integer"})
			return
		}
		page = n
	}
	list, err := h.perks.RedemptionHistory(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, RedemptionsResponse{Redemptions: list, Page: page})
}

// Analytics godoc
// @Summary      Token analytics
// @Tags         Perks
// @Produce      json
// @Success      200 {object} models.Analytics
// @Failure      502 {object} handler.ErrorResponse
// @Router       /api/analytics [get]
func (h *Handler) Analytics(c *gin.Context) {
	a, err := h.perks.Analytics(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
