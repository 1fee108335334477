package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"cash4edu/internal/models"
	"cash4edu/internal/onboarding"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxDocumentSize caps a residency proof upload.
const maxDocumentSize = 5 << 20

type ReferenceResponse struct {
	Items []models.ReferenceItem `json:"items"`
}

// SubmitStep godoc
// @Summary      Submit an onboarding step
// @Description  Validates and sends one step (personal, education, financial, interests, residency).
// @Description  Steps may be revisited but not skipped. The residency step also accepts
// @Description  multipart/form-data with an optional "document" file.
// @Tags         Onboarding
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        step path string true "step name"
// @Success      200 {object} onboarding.Progress
// @Failure      400 {object} handler.ErrorResponse
// @Failure      404 {object} handler.ErrorResponse "unknown step"
// @Failure      409 {object} handler.ErrorResponse "previous steps incomplete"
// @Failure      502 {object} handler.ErrorResponse
// @Router       /api/onboarding/{step} [post]
func (h *Handler) SubmitStep(c *gin.Context) {
	step, err := onboarding.ParseStep(c.Param("step"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var form any
	if step == onboarding.StepResidency && strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err = residencyFromMultipart(c)
	} else {
		var raw []byte
		if raw, err = c.GetRawData(); err == nil {
			form, err = onboarding.DecodeForm(step, raw)
		}
	}
	if err != nil {
		h.logger.Debug("SubmitStep(): bad request body", zap.Stringer("step", step), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	progress, err := h.onboarding.Submit(c.Request.Context(), step, form)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func residencyFromMultipart(c *gin.Context) (models.ResidencyForm, error) {
	form := models.ResidencyForm{
		State:           c.PostForm("state"),
		City:            c.PostForm("city"),
		PinCode:         c.PostForm("pin_code"),
		ResidencyStatus: c.PostForm("residency_status"),
	}
	fh, err := c.FormFile("document")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil
	}
	if err != nil {
		return form, err
	}
	if fh.Size > maxDocumentSize {
		return form, errors.New("document too large")
	}
	f, err := fh.Open()
	if err != nil {
		return form, err
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, maxDocumentSize))
	if err != nil {
		return form, err
	}
	form.Document = &models.Document{FileName: fh.Filename, Content: content}
	return form, nil
}

// OnboardingProgress godoc
// @Summary      Onboarding progress
// @Description  Current step, completed steps and completion percentage. A fresh process resumes
// @Description  from the loaded profile.
// @Tags         Onboarding
// @Produce      json
// @Success      200 {object} onboarding.Progress
// @Router       /api/onboarding/progress [get]
func (h *Handler) OnboardingProgress(c *gin.Context) {
	progress := h.onboarding.Progress()
	if len(progress.Completed) == 0 {
		if p, err := h.profiles.RefreshUserProfile(c.Request.Context(), false); err == nil {
			h.onboarding.Resume(p)
			progress = h.onboarding.Progress()
		}
	}
	c.JSON(http.StatusOK, progress)
}

// ReferenceData godoc
// @Summary      Onboarding reference data
// @Description  Picker choices for the education and financial steps, e.g. institutions or income ranges.
// @Tags         Onboarding
// @Produce      json
// @Param        step path string true "education or financial"
// @Param        kind path string true "list name, e.g. institutions"
// @Success      200 {object} handler.ReferenceResponse
// @Failure      404 {object} handler.ErrorResponse
// @Failure      502 {object} handler.ErrorResponse
// @Router       /api/onboarding/{step}/reference/{kind} [get]
func (h *Handler) ReferenceData(c *gin.Context) {
	step, err := onboarding.ParseStep(c.Param("step"))
	if err != nil {
		h.fail(c, err)
		return
	}
	items, err := h.onboarding.ReferenceData(c.Request.Context(), step, c.Param("kind"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ReferenceResponse{Items: items})
}
