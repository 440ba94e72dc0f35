package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	passwordHashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fakeMailer struct {
	mu           sync.Mutex
	verification map[string]string
	reset        map[string]string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{verification: map[string]string{}, reset: map[string]string{}}
}

func (m *fakeMailer) SendVerification(toEmail, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verification[toEmail] = token
	return nil
}

func (m *fakeMailer) SendResetToken(toEmail, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset[toEmail] = token
	return nil
}

func (m *fakeMailer) resetToken(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset[email]
}

func newUserFixture(t *testing.T) (IUserService, *fakeMailer, *subscriptionFixture) {
	t.Helper()
	f := newSubscriptionFixture(t)
	mail := newFakeMailer()
	users := NewUserService(f.uowFactory, mail, nil, logger.NewNopLogger(), "test-secret", time.Hour)
	return users, mail, f
}

func registerRequest(userName string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		UserName: userName,
		Name:     "Pod Caster",
		Email:    userName + "@Example.com",
		Password: "s3cret-pass",
	}
}

func TestRegisterVerifyLogin(t *testing.T) {
	ctx := context.Background()
	users, _, _ := newUserFixture(t)

	reg, err := users.Register(ctx, registerRequest("caster"))
	require.NoError(t, err)
	assert.Equal(t, "caster@example.com", reg.User.Email)
	assert.Equal(t, string(entity.UserRoleUser), reg.User.Role)
	assert.False(t, reg.User.Verified)
	assert.Equal(t, entity.SubscriptionTypeFree, reg.User.Subscription.Type)
	require.NotEmpty(t, reg.Token)

	require.NoError(t, users.Verify(ctx, reg.Token))
	assert.True(t, apperror.Is(users.Verify(ctx, reg.Token), apperror.KindNotFound))

	_, err = users.Register(ctx, registerRequest("caster"))
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	res, err := users.Login(ctx, &dto.LoginRequest{Email: "caster@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)
	assert.NotNil(t, res.User.LastLogin)

	_, err = users.Login(ctx, &dto.LoginRequest{UserName: "caster", Password: "s3cret-pass"})
	require.NoError(t, err)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	users, _, _ := newUserFixture(t)
	_, err := users.Register(ctx, registerRequest("locked"))
	require.NoError(t, err)

	_, err = users.Login(ctx, &dto.LoginRequest{Email: "locked@example.com", Password: "wrong-password"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	_, err = users.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = users.Login(ctx, &dto.LoginRequest{Password: "whatever"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestRegister_RefreshesUnverifiedAccount(t *testing.T) {
	ctx := context.Background()
	users, _, _ := newUserFixture(t)

	first, err := users.Register(ctx, registerRequest("retry"))
	require.NoError(t, err)
	second, err := users.Register(ctx, registerRequest("retry"))
	require.NoError(t, err)

	assert.Equal(t, first.User.Id, second.User.Id)
	assert.NotEqual(t, first.Token, second.Token)
	assert.True(t, apperror.Is(users.Verify(ctx, first.Token), apperror.KindNotFound))
	assert.NoError(t, users.Verify(ctx, second.Token))
}

func TestForgetAndResetPassword(t *testing.T) {
	ctx := context.Background()
	users, mail, _ := newUserFixture(t)
	_, err := users.Register(ctx, registerRequest("forgetful"))
	require.NoError(t, err)

	err = users.ForgetPassword(ctx, &dto.ForgetPasswordRequest{Email: "missing@example.com"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	require.NoError(t, users.ForgetPassword(ctx, &dto.ForgetPasswordRequest{Email: "forgetful@example.com"}))
	require.Eventually(t, func() bool { return mail.resetToken("forgetful@example.com") != "" }, time.Second, 10*time.Millisecond)
	token := mail.resetToken("forgetful@example.com")

	err = users.ResetPassword(ctx, token, &dto.ResetPasswordRequest{Password: "new-password", ConfirmPassword: "other-password"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	err = users.ResetPassword(ctx, "bogus", &dto.ResetPasswordRequest{Password: "new-password", ConfirmPassword: "new-password"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	require.NoError(t, users.ResetPassword(ctx, token, &dto.ResetPasswordRequest{Password: "new-password", ConfirmPassword: "new-password"}))
	_, err = users.Login(ctx, &dto.LoginRequest{Email: "forgetful@example.com", Password: "new-password"})
	assert.NoError(t, err)

	// The token is single use.
	err = users.ResetPassword(ctx, token, &dto.ResetPasswordRequest{Password: "third-password", ConfirmPassword: "third-password"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestProfileReadsThroughToSubscription(t *testing.T) {
	ctx := context.Background()
	users, _, f := newUserFixture(t)
	premium := testutil.CreatePlan(t, f.db, "Premium", 2499, 30)
	user := testutil.CreateUser(t, f.db, "listener")
	testutil.CreateSubscription(t, f.db, user.Id, premium, entity.SubscriptionStatusActive, time.Now().Add(10*day))

	profile, err := users.GetProfile(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionTypePremium, profile.Subscription.Type)
	assert.Equal(t, "Premium", profile.Subscription.PlanName)
	assert.EqualValues(t, 2499, profile.Subscription.PlanPrice)
	assert.EqualValues(t, 10, profile.Subscription.DaysRemaining)

	bio := "Weekly show about Go"
	updated, err := users.UpdateProfile(ctx, user.Id, &dto.UpdateUserRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)

	require.NoError(t, users.Logout(ctx, user.Id))

	stored, err := f.uowFactory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByID{ID: user.Id})
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogout)
}
