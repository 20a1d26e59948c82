package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/brewhouse/app/services"
	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
	"github.com/shashiranjanraj/brewhouse/pkg/auth"
	"github.com/shashiranjanraj/brewhouse/pkg/notification"
	"github.com/shashiranjanraj/brewhouse/pkg/workerpool"
)

func TestRegister_RequiresFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), services.RegisterInput{Email: "bad"})

	require.True(t, apperr.Is(err, apperr.KindValidation))
	e := apperr.As(err)
	assert.Contains(t, e.Fields, "username")
	assert.Contains(t, e.Fields, "email")
	assert.Contains(t, e.Fields, "password")
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t)
	f.registerVerified(t, "ann")

	_, err := f.auth.Register(context.Background(), services.RegisterInput{
		Username: "someone-else", Email: "ann@example.com", Password: "pw",
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestRegister_AdminSelfSignupForbiddenByDefault(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), services.RegisterInput{
		Username: "eve", Email: "eve@example.com", Password: "pw", Role: "Admin",
	})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.auth.Register(context.Background(), services.RegisterInput{
		Username: "eve", Email: "eve@example.com", Password: "pw", Role: "admin",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "roles are matched exactly")
}

func TestRegister_AdminSignupWhenAllowed(t *testing.T) {
	f := newFixture(t, fixtureOpts{allowAdminSignup: true})
	f.notifier.On("Notify", "boss@example.com", mock.Anything).Return(nil)

	u, err := f.auth.Register(context.Background(), services.RegisterInput{
		Username: "boss", Email: "boss@example.com", Password: "pw", Role: "Admin",
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, u.Role)
	assert.False(t, u.IsVerified)
}

func TestRegister_DispatchFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.notifier.On("Notify", "ann@example.com", mock.Anything).Return(workerpool.ErrPoolFull)

	u, err := f.auth.Register(context.Background(), services.RegisterInput{
		Username: "ann", Email: "ann@example.com", Password: "pw",
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	require.NotNil(t, u.OTPHash)
	f.notifier.AssertExpectations(t)
}

func TestVerify_ReplayFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var code string
	f.notifier.On("Notify", "bob@example.com", mock.AnythingOfType("notification.OTP")).
		Run(func(args mock.Arguments) { code = args.Get(1).(notification.OTP).Code }).
		Return(nil)

	_, err := f.auth.Register(ctx, services.RegisterInput{Username: "bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.NoError(t, f.auth.Verify(ctx, services.VerifyInput{Email: "bob@example.com", OTP: code}))

	err = f.auth.Verify(ctx, services.VerifyInput{Email: "bob@example.com", OTP: code})
	assert.True(t, apperr.Is(err, apperr.KindAuth))
}

func TestVerify_WrongCodeAndUnknownEmail(t *testing.T) {
	f := newFixture(t)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, services.RegisterInput{Username: "cid", Email: "cid@example.com", Password: "pw"})
	require.NoError(t, err)

	err = f.auth.Verify(ctx, services.VerifyInput{Email: "cid@example.com", OTP: "not-it"})
	assert.True(t, apperr.Is(err, apperr.KindAuth))
	assert.Equal(t, "Invalid OTP.", apperr.As(err).Message)

	err = f.auth.Verify(ctx, services.VerifyInput{Email: "nobody@example.com", OTP: "123456"})
	assert.True(t, apperr.Is(err, apperr.KindAuth))

	err = f.auth.Verify(ctx, services.VerifyInput{Email: "cid@example.com"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	f.notifier.On("Notify", "dee@example.com", mock.Anything).Return(nil)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, services.RegisterInput{Username: "dee", Email: "dee@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = f.auth.Authenticate(ctx, services.LoginInput{Email: "dee@example.com", Password: "pw"})
	assert.Equal(t, "Verify email first.", apperr.As(err).Message)

	_, err = f.auth.Authenticate(ctx, services.LoginInput{Email: "dee@example.com", Password: "wrong"})
	assert.Equal(t, "Invalid credentials.", apperr.As(err).Message)

	_, err = f.auth.Authenticate(ctx, services.LoginInput{Email: "ghost@example.com", Password: "pw"})
	assert.Equal(t, "Invalid credentials.", apperr.As(err).Message)

	p := f.registerVerified(t, "eli")
	res, err := f.auth.Authenticate(ctx, services.LoginInput{Email: "eli@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, res.Role)

	parsed, err := f.tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, parsed.UserID)
}

func TestRegisterAdmin_IsVerified(t *testing.T) {
	f := newFixture(t)
	p := f.admin(t)

	res, err := f.auth.Authenticate(context.Background(), services.LoginInput{Email: "root@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, res.Role)
	assert.NotZero(t, p.UserID)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestAuthenticate_MissingFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Authenticate(context.Background(), services.LoginInput{})
	require.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Missing email or password", apperr.As(err).Message)
}
