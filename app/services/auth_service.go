package services

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/brewhouse/app/models"
	"github.com/shashiranjanraj/brewhouse/app/repositories"
	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
	"github.com/shashiranjanraj/brewhouse/pkg/auth"
	"github.com/shashiranjanraj/brewhouse/pkg/logger"
	"github.com/shashiranjanraj/brewhouse/pkg/metrics"
	"github.com/shashiranjanraj/brewhouse/pkg/notification"
	"github.com/shashiranjanraj/brewhouse/pkg/validate"
)

// Notifier delivers a notification without blocking the caller.
type Notifier interface {
	Notify(address string, n notification.Notification) error
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,notblank,max=80"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=Admin User"`
}

type VerifyInput struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp"   validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string    `json:"token"`
	Role  auth.Role `json:"role"`
}

type AuthService struct {
	users            *repositories.UserRepository
	hasher           auth.Hasher
	tokens           *auth.TokenIssuer
	notifier         Notifier
	allowAdminSignup bool
}

func NewAuthService(users *repositories.UserRepository, hasher auth.Hasher, tokens *auth.TokenIssuer, notifier Notifier, allowAdminSignup bool) *AuthService {
	return &AuthService{
		users:            users,
		hasher:           hasher,
		tokens:           tokens,
		notifier:         notifier,
		allowAdminSignup: allowAdminSignup,
	}
}

// Register creates an unverified account and sends its OTP. Delivery runs
// after the commit and its failure never fails the registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, apperr.ValidationFields("Missing required fields", errs)
	}

	role := auth.RoleUser
	if in.Role != "" {
		role, _ = auth.ParseRole(in.Role)
	}
	if role == auth.RoleAdmin && !s.allowAdminSignup {
		return nil, apperr.Forbidden("Admin accounts cannot be self-registered.")
	}

	user, code, err := s.create(ctx, in.Username, in.Email, in.Password, role, false)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Notify(user.Email, notification.OTP{Username: user.Username, Code: code}); err != nil {
		metrics.NotificationsDropped.Inc()
		logger.WithCtx(ctx).Warn("auth: otp dispatch refused", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// RegisterAdmin creates an already verified Admin. It backs the seeders and
// bypasses the self-signup guard.
func (s *AuthService) RegisterAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	in := RegisterInput{Username: username, Email: email, Password: password, Role: string(auth.RoleAdmin)}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, apperr.ValidationFields("Missing required fields", errs)
	}
	user, _, err := s.create(ctx, username, email, password, auth.RoleAdmin, true)
	return user, err
}

func (s *AuthService) create(ctx context.Context, username, email, password string, role auth.Role, verified bool) (*models.User, string, error) {
	taken, err := s.users.Taken(ctx, username, email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", apperr.Conflict("Username or email already exists.")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", apperr.Infrastructure("hash password", err)
	}

	user := &models.User{
		Username:   username,
		Email:      email,
		Password:   hash,
		Role:       role,
		IsVerified: verified,
	}

	var code string
	if !verified {
		code, err = auth.GenerateOTP()
		if err != nil {
			return nil, "", apperr.Infrastructure("generate otp", err)
		}
		otpHash := auth.HashOTP(code)
		user.OTPHash = &otpHash
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	return user, code, nil
}

// Verify confirms an email with its OTP. The code is cleared on success so
// replaying it fails.
func (s *AuthService) Verify(ctx context.Context, in VerifyInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.OTP = strings.TrimSpace(in.OTP)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return apperr.ValidationFields("Missing email or OTP", errs)
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Auth("Invalid OTP.")
	}
	if err != nil {
		return err
	}
	if user.OTPHash == nil || !auth.OTPMatches(*user.OTPHash, in.OTP) {
		return apperr.Auth("Invalid OTP.")
	}
	return s.users.MarkVerified(ctx, user.ID, *user.OTPHash)
}

// Authenticate checks credentials and issues a token carrying {id, role}.
func (s *AuthService) Authenticate(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, apperr.ValidationFields("Missing email or password", errs)
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Auth("Invalid credentials.")
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Compare(user.Password, in.Password) {
		return nil, apperr.Auth("Invalid credentials.")
	}
	if !user.IsVerified {
		return nil, apperr.Auth("Verify email first.")
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperr.Infrastructure("issue token", err)
	}
	return &LoginResult{Token: token, Role: user.Role}, nil
}
