package handler

import (
	"encoding/json"
	"net/http"

	"cash4edu/internal/models"

	"github.com/gin-gonic/gin"
)

type VerifyOTPResponse struct {
	User models.UserRecord `json:"user" swaggertype:"object"`
}

type DashboardVisitResponse struct {
	FirstVisit bool `json:"first_visit" example:"true"`
}

// bindJSON decodes the raw request body into v, answering 400 on failure.
func bindJSON(c *gin.Context, v any) bool {
	raw, err := c.GetRawData()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read request body"})
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return false
	}
	return true
}

// SignUp godoc
// @Summary      Sign up
// @Description  Registers a new account. The backend emails a one-time code.
// @Tags         Account
// @Accept       json
// @Produce      json
// @Param        request body models.SignupForm true "account details"
// @Success      200 {object} handler.SuccessResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      409 {object} handler.ErrorResponse "already signed in"
// @Failure      502 {object} handler.ErrorResponse
// @Router       /signup [post]
func (h *Handler) SignUp(c *gin.Context) {
	var form models.SignupForm
	if !bindJSON(c, &form) {
		return
	}
	if err := h.accounts.SignUp(c.Request.Context(), form); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Account created"})
}

// VerifyOTP godoc
// @Summary      Verify one-time code
// @Description  Exchanges the emailed code for a session. The token is persisted on this device
// @Description  and the profile starts loading in the background.
// @Tags         Account
// @Accept       json
// @Produce      json
// @Param        request body models.OTPForm true "email and code"
// @Success      200 {object} handler.VerifyOTPResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse "wrong or expired code"
// @Failure      502 {object} handler.ErrorResponse
// @Router       /verify-otp [post]
func (h *Handler) VerifyOTP(c *gin.Context) {
	var form models.OTPForm
	if !bindJSON(c, &form) {
		return
	}
	user, err := h.accounts.VerifyOTP(c.Request.Context(), form)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, VerifyOTPResponse{User: user})
}

// ForgotPassword godoc
// @Summary      Forgot password
// @Tags         Account
// @Accept       json
// @Produce      json
// @Param        request body models.ForgotPasswordForm true "account email"
// @Success      200 {object} handler.SuccessResponse
// @Failure      400 {object} handler.ErrorResponse
// @Router       /forgot-password [post]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var form models.ForgotPasswordForm
	if !bindJSON(c, &form) {
		return
	}
	if err := h.accounts.ForgotPassword(c.Request.Context(), form); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Reset code sent"})
}

// ResetPassword godoc
// @Summary      Reset password
// @Tags         Account
// @Accept       json
// @Produce      json
// @Param        request body models.ResetPasswordForm true "email, code and new password"
// @Success      200 {object} handler.SuccessResponse
// @Failure      400 {object} handler.ErrorResponse
// @Router       /reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var form models.ResetPasswordForm
	if !bindJSON(c, &form) {
		return
	}
	if err := h.accounts.ResetPassword(c.Request.Context(), form); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Password updated"})
}

// Logout godoc
// @Summary      Log out
// @Description  Clears the persisted token and user record, the in-memory profile and onboarding progress.
// @Tags         Account
// @Produce      json
// @Success      200 {object} handler.SuccessResponse
// @Failure      401 {object} handler.ErrorResponse
// @Router       /api/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	h.accounts.Logout(c.Request.Context())
	h.onboarding.Reset()
	c.JSON(http.StatusOK, SuccessResponse{Message: "Signed out"})
}

// DashboardVisited godoc
// @Summary      Record dashboard visit
// @Description  Marks the dashboard as seen; first_visit is true only the first time on this device.
// @Tags         Account
// @Produce      json
// @Success      200 {object} handler.DashboardVisitResponse
// @Router       /api/dashboard/visited [post]
func (h *Handler) DashboardVisited(c *gin.Context) {
	first := h.accounts.MarkDashboardVisited(c.Request.Context())
	c.JSON(http.StatusOK, DashboardVisitResponse{FirstVisit: first})
}
