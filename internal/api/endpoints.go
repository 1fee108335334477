package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"cash4edu/internal/models"
	"cash4edu/internal/notify"

	"go.uber.org/zap"
)

// Backend routes.
const (
	EndpointCreateUser     = "create-user"
	EndpointVerifyOTP      = "verify-otp"
	EndpointForgotPassword = "forgot-password"
	EndpointResetPassword  = "reset-password"
	EndpointProfile        = "profile"
	EndpointEducation      = "education-profile"
	EndpointFinancial      = "financial-profile"
	EndpointResidence      = "residence-profile"
	EndpointPerks          = "perks"
	EndpointRedemptions    = "redemptions"
	EndpointAnalytics      = "analytics"
)

// CreateUser registers a new account; the backend replies by sending an OTP.
func (c *Client) CreateUser(ctx context.Context, form models.SignupForm) (*models.Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Endpoint: EndpointCreateUser, Body: form, SkipAuth: true})
}

// VerifyOTP exchanges an OTP for a bearer token and the user record.
func (c *Client) VerifyOTP(ctx context.Context, form models.OTPForm) (*models.AuthResult, error) {
	env, err := c.Do(ctx, Request{Method: http.MethodPost, Endpoint: EndpointVerifyOTP, Body: form, SkipAuth: true})
	if err != nil {
		return nil, err
	}
	var res models.AuthResult
	if err := DecodeData(env, &res); err != nil {
		return nil, c.reject(EndpointVerifyOTP, err)
	}
	return &res, nil
}

func (c *Client) ForgotPassword(ctx context.Context, form models.ForgotPasswordForm) (*models.Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Endpoint: EndpointForgotPassword, Body: form, SkipAuth: true})
}

func (c *Client) ResetPassword(ctx context.Context, form models.ResetPasswordForm) (*models.Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Endpoint: EndpointResetPassword, Body: form, SkipAuth: true})
}

// GetProfile fetches profile/{id} without toasting; the session layer owns
// user-facing reporting for profile loads.
func (c *Client) GetProfile(ctx context.Context, id string) (*models.Envelope, error) {
	return c.Do(ctx, Request{Endpoint: EndpointProfile + "/" + url.PathEscape(id), Quiet: true})
}

// UpdateProfile sends a partial profile update to profile/{id}.
func (c *Client) UpdateProfile(ctx context.Context, id string, patch any) (*models.Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Endpoint: EndpointProfile + "/" + url.PathEscape(id), Body: patch})
}

func (c *Client) SubmitEducation(ctx context.Context, form models.EducationForm) (*models.Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Endpoint: EndpointEducation, Body: form})
}

func (c *Client) SubmitFinancial(ctx context.Context, form models.FinancialForm) (*models.Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Endpoint: EndpointFinancial, Body: form})
}

// SubmitResidence posts the residency step as multipart form data so the
// optional proof document can travel with it.
func (c *Client) SubmitResidence(ctx context.Context, form models.ResidencyForm) (*models.Envelope, error) {
	f := NewForm().
		Field("state", form.State).
		Field("city", form.City).
		Field("pin_code", form.PinCode).
		Field("residency_status", form.ResidencyStatus)
	if form.Document != nil {
		f.File("document", form.Document.FileName, form.Document.Content)
	}
	return c.Do(ctx, Request{Method: http.MethodPost, Endpoint: EndpointResidence, Form: f})
}

// ReferenceData lists a reference table, e.g. education-profile/institutions.
func (c *Client) ReferenceData(ctx context.Context, group, kind string) ([]models.ReferenceItem, error) {
	endpoint := group + "/" + url.PathEscape(kind)
	env, err := c.Do(ctx, Request{Endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	var items []models.ReferenceItem
	if err := DecodeData(env, &items); err != nil {
		return nil, c.reject(endpoint, err)
	}
	return items, nil
}

// ListPerks returns the perks catalogue, optionally filtered by category.
func (c *Client) ListPerks(ctx context.Context, category string) ([]models.Perk, error) {
	endpoint := EndpointPerks
	if category != "" {
		endpoint += "?" + url.Values{"category": {category}}.Encode()
	}
	env, err := c.Do(ctx, Request{Endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	var perks []models.Perk
	if err := DecodeData(env, &perks); err != nil {
		return nil, c.reject(EndpointPerks, err)
	}
	return perks, nil
}

func (c *Client) RedeemPerk(ctx context.Context, perkID string) (*models.Redemption, error) {
	endpoint := EndpointPerks + "/" + url.PathEscape(perkID) + "/redeem"
	env, err := c.Do(ctx, Request{Method: http.MethodPost, Endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	var r models.Redemption
	if err := DecodeData(env, &r); err != nil {
		return nil, c.reject(endpoint, err)
	}
	return &r, nil
}

func (c *Client) RedemptionHistory(ctx context.Context, page int) ([]models.Redemption, error) {
	endpoint := EndpointRedemptions
	if page > 1 {
		endpoint += "?page=" + strconv.Itoa(page)
	}
	env, err := c.Do(ctx, Request{Endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	var history []models.Redemption
	if err := DecodeData(env, &history); err != nil {
		return nil, c.reject(EndpointRedemptions, err)
	}
	return history, nil
}

func (c *Client) Analytics(ctx context.Context) (*models.Analytics, error) {
	env, err := c.Do(ctx, Request{Endpoint: EndpointAnalytics})
	if err != nil {
		return nil, err
	}
	var a models.Analytics
	if err := DecodeData(env, &a); err != nil {
		return nil, c.reject(EndpointAnalytics, err)
	}
	return &a, nil
}

// reject reports a payload that failed DecodeData.
func (c *Client) reject(endpoint string, err error) error {
	if apiErr, ok := err.(*Error); ok {
		apiErr.Endpoint = endpoint
		c.logger.Warn("Client.reject(): response rejected", zap.String("endpoint", endpoint), zap.Error(apiErr))
		notify.Error(c.notifier, "Error", apiErr.Detail())
	}
	return err
}
