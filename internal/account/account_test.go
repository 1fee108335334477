package account

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cash4edu/internal/api"
	"cash4edu/internal/models"
	"cash4edu/internal/notify"
	"cash4edu/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBackend struct {
	calls  map[string]int
	auth   *models.AuthResult
	err    error
	signup models.SignupForm
}

func (f *fakeBackend) hit(name string) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeBackend) CreateUser(_ context.Context, form models.SignupForm) (*models.Envelope, error) {
	f.hit("create-user")
	f.signup = form
	return &models.Envelope{Success: true}, f.err
}

func (f *fakeBackend) VerifyOTP(context.Context, models.OTPForm) (*models.AuthResult, error) {
	f.hit("verify-otp")
	return f.auth, f.err
}

func (f *fakeBackend) ForgotPassword(context.Context, models.ForgotPasswordForm) (*models.Envelope, error) {
	f.hit("forgot-password")
	return &models.Envelope{Success: true}, f.err
}

func (f *fakeBackend) ResetPassword(context.Context, models.ResetPasswordForm) (*models.Envelope, error) {
	f.hit("reset-password")
	return &models.Envelope{Success: true}, f.err
}

type fakeSession struct{ cleared int }

func (f *fakeSession) ClearWith(wipe func()) {
	if wipe != nil {
		wipe()
	}
	f.cleared++
}

func newTestService(t *testing.T, backend *fakeBackend) (*Service, *storage.Store, *fakeSession, *notify.Recorder) {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "client.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	kv, err := storage.NewSQLiteKV(context.Background(), db)
	require.NoError(t, err)

	store := storage.NewStore(kv, nil, zap.NewNop())
	sess := &fakeSession{}
	rec := &notify.Recorder{}
	return NewService(backend, store, sess, rec, zap.NewNop()), store, sess, rec
}

func TestSignUpValidatesBeforeSending(t *testing.T) {
	backend := &fakeBackend{}
	svc, _, _, rec := newTestService(t, backend)

	err := svc.SignUp(context.Background(), models.SignupForm{Name: "Asha", Email: "asha@example.com", Phone: "98765", Password: "password123"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, backend.calls["create-user"])
	require.Len(t, rec.Toasts(), 1)
	assert.Equal(t, "Please enter a valid phone number", rec.Toasts()[0].Text2)

	err = svc.SignUp(context.Background(), models.SignupForm{Name: "Asha", Email: "asha@example.com", Phone: "+919876543210", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, 1, backend.calls["create-user"])
	assert.Equal(t, 1, rec.Count(models.ToastSuccess))
}

func TestVerifyOTPPersistsSessionAndSignals(t *testing.T) {
	backend := &fakeBackend{auth: &models.AuthResult{Token: "jwt", User: models.UserRecord{"id": "u1", "name": "Asha"}}}
	svc, store, _, _ := newTestService(t, backend)
	ctx := context.Background()
	signal, cancel := store.SubscribeToken()
	defer cancel()

	user, err := svc.VerifyOTP(ctx, models.OTPForm{Email: "asha@example.com", OTP: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID())
	assert.Equal(t, "jwt", store.GetToken(ctx))
	assert.Equal(t, "Asha", store.GetUserData(ctx)["name"])
	assert.Len(t, signal, 1)
}

func TestVerifyOTPRejectsRecordWithoutID(t *testing.T) {
	backend := &fakeBackend{auth: &models.AuthResult{Token: "jwt", User: models.UserRecord{"name": "Asha"}}}
	svc, store, _, rec := newTestService(t, backend)

	_, err := svc.VerifyOTP(context.Background(), models.OTPForm{Email: "asha@example.com", OTP: "123456"})
	require.Error(t, err)
	assert.Equal(t, "", store.GetToken(context.Background()))
	assert.Equal(t, 1, rec.Count(models.ToastError))
}

func TestVerifyOTPPropagatesAPIError(t *testing.T) {
	backend := &fakeBackend{err: &api.Error{Kind: api.KindStatus, Status: 401}}
	svc, _, _, _ := newTestService(t, backend)

	_, err := svc.VerifyOTP(context.Background(), models.OTPForm{Email: "asha@example.com", OTP: "123456"})
	assert.Equal(t, 401, api.StatusOf(err))

	_, err = svc.VerifyOTP(context.Background(), models.OTPForm{Email: "asha@example.com", OTP: "12ab56"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 1, backend.calls["verify-otp"])
}

func TestForgotAndResetPassword(t *testing.T) {
	backend := &fakeBackend{}
	svc, _, _, _ := newTestService(t, backend)
	ctx := context.Background()

	require.NoError(t, svc.ForgotPassword(ctx, models.ForgotPasswordForm{Email: "asha@example.com"}))
	assert.ErrorIs(t, svc.ResetPassword(ctx, models.ResetPasswordForm{Email: "asha@example.com", OTP: "123456", NewPassword: "short"}), ErrValidation)
	require.NoError(t, svc.ResetPassword(ctx, models.ResetPasswordForm{Email: "asha@example.com", OTP: "123456", NewPassword: "long-enough"}))

	backend.err = errors.New("offline")
	assert.Error(t, svc.ForgotPassword(ctx, models.ForgotPasswordForm{Email: "asha@example.com"}))
}

func TestLogoutKeepsVisitedFlag(t *testing.T) {
	svc, store, sess, _ := newTestService(t, &fakeBackend{})
	ctx := context.Background()
	store.SetToken(ctx, "jwt")
	store.SetUserData(ctx, models.UserRecord{"id": "u1"})

	assert.True(t, svc.MarkDashboardVisited(ctx))
	assert.False(t, svc.MarkDashboardVisited(ctx))

	svc.Logout(ctx)
	assert.Equal(t, "", store.GetToken(ctx))
	assert.Nil(t, store.GetUserData(ctx))
	assert.True(t, store.HasVisitedDashboard(ctx))
	assert.Equal(t, 1, sess.cleared)
}
