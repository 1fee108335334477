// Package account implements the sign-up, OTP, password and logout flows.
package account

import (
	"context"
	"errors"
	"fmt"

	"cash4edu/internal/models"
	"cash4edu/internal/notify"

	"go.uber.org/zap"
)

// ErrValidation is returned when a form fails validation; no request was
// sent.
var ErrValidation = errors.New("form validation failed")

// Backend is the slice of the API client the flows use.
type Backend interface {
	CreateUser(ctx context.Context, form models.SignupForm) (*models.Envelope, error)
	VerifyOTP(ctx context.Context, form models.OTPForm) (*models.AuthResult, error)
	ForgotPassword(ctx context.Context, form models.ForgotPasswordForm) (*models.Envelope, error)
	ResetPassword(ctx context.Context, form models.ResetPasswordForm) (*models.Envelope, error)
}

// Store is the persisted state the flows write.
type Store interface {
	SetToken(ctx context.Context, token string) bool
	SetUserData(ctx context.Context, rec models.UserRecord) bool
	SetVisitedDashboard(ctx context.Context, visited bool) bool
	HasVisitedDashboard(ctx context.Context) bool
	ClearAuth(ctx context.Context) bool
}

// Session is cleared on logout. ClearWith runs the store wipe so that no
// profile fetch in flight can write the user record back.
type Session interface {
	ClearWith(wipe func())
}

type Service struct {
	backend  Backend
	store    Store
	session  Session
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewService(backend Backend, store Store, session Session, notifier notify.Notifier, logger *zap.Logger) *Service {
	return &Service{
		backend:  backend,
		store:    store,
		session:  session,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) validate(form any) error {
	if err := models.Validate(form); err != nil {
		notify.Error(s.notifier, "Validation Error", models.ValidationMessage(err))
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// SignUp registers the account; the backend sends an OTP to the email.
func (s *Service) SignUp(ctx context.Context, form models.SignupForm) error {
	if err := s.validate(form); err != nil {
		return err
	}
	if _, err := s.backend.CreateUser(ctx, form); err != nil {
		return err
	}
	notify.Success(s.notifier, "Account created", "Enter the code we sent to "+form.Email)
	return nil
}

// VerifyOTP completes sign-in: the token and user record are persisted, and
// the token write wakes the session's profile loader.
func (s *Service) VerifyOTP(ctx context.Context, form models.OTPForm) (models.UserRecord, error) {
	if err := s.validate(form); err != nil {
		return nil, err
	}
	res, err := s.backend.VerifyOTP(ctx, form)
	if err != nil {
		return nil, err
	}
	if res.User.ID() == "" {
		notify.Error(s.notifier, "Error", "Sign-in response did not include your account")
		return nil, errors.New("verify-otp: user record has no id")
	}
	// user data first: the token signal triggers a profile load that needs it
	if !s.store.SetUserData(ctx, res.User) || !s.store.SetToken(ctx, res.Token) {
		notify.Error(s.notifier, "Error", "Could not save your session on this device")
		return nil, errors.New("verify-otp: failed to persist session")
	}
	s.logger.Info("Service.VerifyOTP(): signed in", zap.String("user_id", res.User.ID()))
	notify.Success(s.notifier, "Verified", "Welcome to Cash4Edu")
	return res.User, nil
}

func (s *Service) ForgotPassword(ctx context.Context, form models.ForgotPasswordForm) error {
	if err := s.validate(form); err != nil {
		return err
	}
	if _, err := s.backend.ForgotPassword(ctx, form); err != nil {
		return err
	}
	notify.Success(s.notifier, "Check your email", "We sent a reset code to "+form.Email)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, form models.ResetPasswordForm) error {
	if err := s.validate(form); err != nil {
		return err
	}
	if _, err := s.backend.ResetPassword(ctx, form); err != nil {
		return err
	}
	notify.Success(s.notifier, "Password updated", "You can sign in with your new password")
	return nil
}

// Logout clears the persisted token and user record and the in-memory
// session. The visited-dashboard flag survives.
func (s *Service) Logout(ctx context.Context) {
	s.session.ClearWith(func() {
		if !s.store.ClearAuth(ctx) {
			s.logger.Warn("Service.Logout(): persisted auth was not fully cleared")
		}
	})
	s.logger.Info("Service.Logout(): signed out")
}

// MarkDashboardVisited records the first dashboard visit and reports
// whether this was it.
func (s *Service) MarkDashboardVisited(ctx context.Context) (first bool) {
	if s.store.HasVisitedDashboard(ctx) {
		return false
	}
	s.store.SetVisitedDashboard(ctx, true)
	return true
}
