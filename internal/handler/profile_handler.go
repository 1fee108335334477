package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Profile godoc
// @Summary      Current profile
// @Description  Returns the signed-in student's profile, served from memory while it is younger
// @Description  than the cache TTL and fetched from the backend otherwise.
// @Tags         Profile
// @Produce      json
// @Success      200 {object} models.Profile
// @Failure      401 {object} handler.ErrorResponse
// @Failure      502 {object} handler.ErrorResponse
// @Router       /api/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	p, err := h.profiles.RefreshUserProfile(c.Request.Context(), false)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// RefreshProfile godoc
// @Summary      Refresh profile
// @Description  Fetches the profile from the backend, bypassing the cache.
// @Tags         Profile
// @Produce      json
// @Success      200 {object} models.Profile
// @Failure      401 {object} handler.ErrorResponse
// @Failure      502 {object} handler.ErrorResponse
// @Router       /api/profile/refresh [post]
func (h *Handler) RefreshProfile(c *gin.Context) {
	p, err := h.profiles.RefreshUserProfile(c.Request.Context(), true)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Session godoc
// @Summary      Session state
// @Description  Snapshot of the in-memory profile, whether a fetch is in flight and when the last one completed.
// @Tags         Profile
// @Produce      json
// @Success      200 {object} session.Snapshot
// @Router       /api/session [get]
func (h *Handler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.profiles.Snapshot())
}
