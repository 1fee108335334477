/**
* Name:        handler.go
* Description: gin handlers of the local companion API
* Workflow:    bind request -> call account/session/onboarding/api -> map errors to status
 */
package handler

import (
	"context"
	"errors"
	"net/http"

	"cash4edu/internal/account"
	"cash4edu/internal/api"
	"cash4edu/internal/models"
	"cash4edu/internal/onboarding"
	"cash4edu/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Accounts is implemented by *account.Service.
type Accounts interface {
	SignUp(ctx context.Context, form models.SignupForm) error
	VerifyOTP(ctx context.Context, form models.OTPForm) (models.UserRecord, error)
	ForgotPassword(ctx context.Context, form models.ForgotPasswordForm) error
	ResetPassword(ctx context.Context, form models.ResetPasswordForm) error
	Logout(ctx context.Context)
	MarkDashboardVisited(ctx context.Context) bool
}

// Profiles is implemented by *session.Session.
type Profiles interface {
	Snapshot() session.Snapshot
	RefreshUserProfile(ctx context.Context, force bool) (*models.Profile, error)
}

// Onboarding is implemented by *onboarding.Flow.
type Onboarding interface {
	Submit(ctx context.Context, step onboarding.Step, form any) (onboarding.Progress, error)
	Progress() onboarding.Progress
	Resume(p *models.Profile)
	Reset()
	ReferenceData(ctx context.Context, step onboarding.Step, kind string) ([]models.ReferenceItem, error)
}

// Perks is implemented by *api.Client.
type Perks interface {
	ListPerks(ctx context.Context, category string) ([]models.Perk, error)
	RedeemPerk(ctx context.Context, perkID string) (*models.Redemption, error)
	RedemptionHistory(ctx context.Context, page int) ([]models.Redemption, error)
	Analytics(ctx context.Context) (*models.Analytics, error)
}

// Toasts is implemented by *notify.Hub.
type Toasts interface {
	Subscribe() (string, <-chan models.Toast, func())
}

type Deps struct {
	Accounts   Accounts
	Profiles   Profiles
	Onboarding Onboarding
	Perks      Perks
	Toasts     Toasts
	Logger     *zap.Logger
}

type Handler struct {
	accounts   Accounts
	profiles   Profiles
	onboarding Onboarding
	perks      Perks
	toasts     Toasts
	logger     *zap.Logger
}

func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		accounts:   d.Accounts,
		profiles:   d.Profiles,
		onboarding: d.Onboarding,
		perks:      d.Perks,
		toasts:     d.Toasts,
		logger:     logger,
	}
}

type SuccessResponse struct {
	Message string `json:"message" example:"Password updated"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"Unable to load your profile. Please try again."`
}

// fail writes err with the status it maps to.
func (h *Handler) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Handler: request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

func statusFor(err error) (int, string) {
	var apiErr *api.Error
	switch {
	case errors.Is(err, account.ErrValidation), errors.Is(err, onboarding.ErrValidation),
		errors.Is(err, onboarding.ErrWrongForm):
		return http.StatusBadRequest, "Please check the form and try again"
	case errors.Is(err, session.ErrNoUser), errors.Is(err, session.ErrNoToken), errors.Is(err, onboarding.ErrNoUser):
		return http.StatusUnauthorized, "Sign in required"
	case errors.Is(err, onboarding.ErrStepLocked):
		return http.StatusConflict, "Please complete the previous steps first"
	case errors.Is(err, onboarding.ErrUnknownStep):
		return http.StatusNotFound, "Unknown onboarding step"
	case errors.Is(err, onboarding.ErrNoReference):
		return http.StatusNotFound, "This step has no reference data"
	case errors.Is(err, session.ErrCleared):
		return http.StatusConflict, "Signed out while loading"
	case errors.As(err, &apiErr):
		// backend client errors pass through, everything else is a bad gateway
		if apiErr.Kind == api.KindStatus && apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status, apiErr.Detail()
		}
		return http.StatusBadGateway, apiErr.Detail()
	case errors.Is(err, session.ErrRejected):
		return http.StatusBadGateway, "Unable to load your profile. Please try again."
	}
	return http.StatusInternalServerError, "Internal error"
}
