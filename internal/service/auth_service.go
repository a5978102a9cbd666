package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"vecinu/internal/identity"
	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService fronts the identity provider. Credentials live with the
// provider; the local user row carries profile, role and ban state.
type AuthService struct {
	repos    *Repositories
	provider identity.Provider
	auth     *identity.Authenticator
	now      func() time.Time
}

func NewAuthService(repos *Repositories, provider identity.Provider, auth *identity.Authenticator) *AuthService {
	return &AuthService{repos: repos, provider: provider, auth: auth, now: time.Now}
}

type RegisterInput struct {
	FullName        string `json:"fullName" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email,max=320"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Register signs the user up with the provider and stores the profile row.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	fullName := validation.SanitizeText(in.FullName)
	if len([]rune(fullName)) < 2 {
		return nil, models.NewFieldValidationError("Invalid full name", map[string][]string{
			"fullName": {"must be at least 2 characters"},
		})
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	switch _, err := s.repos.Users.GetByEmail(ctx, email); {
	case err == nil:
		return nil, models.NewConflictError("An account with this email already exists")
	case !models.IsCode(err, models.CodeNotFound):
		return nil, err
	}

	user := &models.User{
		ID:                      uuid.New(),
		Email:                   email,
		FullName:                fullName,
		Role:                    models.RoleUser,
		Language:                "ro",
		NotificationPreferences: models.DefaultNotificationPreferences(),
	}
	if err := s.provider.SignUp(ctx, user, in.Password); err != nil {
		return nil, err
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("An account with this email already exists")
		}
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a fresh session and the signed-in profile.
type LoginResult struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        *models.User `json:"user"`
}

// Login authenticates with the provider and refuses banned accounts.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	session, err := s.provider.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, models.NewAuthenticationError("Invalid email or password")
		}
		return nil, err
	}

	user, err := s.repos.Users.GetByEmail(ctx, session.Email)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewAuthenticationError("Invalid email or password")
		}
		return nil, err
	}
	if user.IsBanned {
		s.endSession(ctx, session.AccessToken)
		msg := "Your account has been suspended"
		if user.BannedReason != nil && *user.BannedReason != "" {
			msg += ": " + *user.BannedReason
		}
		return nil, models.NewAuthenticationError(msg)
	}

	now := s.now().UTC()
	if err := s.repos.Users.TouchLastActive(ctx, user.ID, now); err != nil {
		middleware.Logger.WarnContext(ctx, "last active update failed",
			slog.String("user_id", user.ID.String()), slog.String("error", err.Error()))
	} else {
		user.LastActiveAt = &now
	}

	full, err := s.repos.Users.GetByIDWithNeighborhood(ctx, user.ID)
	if err == nil {
		user = full
	}
	return &LoginResult{AccessToken: session.AccessToken, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// Logout signs out at the provider and revokes the token locally.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	s.endSession(ctx, token)
	return s.auth.Revoke(ctx, token)
}

func (s *AuthService) endSession(ctx context.Context, token string) {
	if err := s.provider.SignOut(ctx, token); err != nil {
		middleware.Logger.WarnContext(ctx, "provider sign-out failed", slog.String("error", err.Error()))
	}
}

type ResendVerificationInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResendVerification asks the provider to send the verification e-mail
// again. It reports success whether or not the address is registered.
func (s *AuthService) ResendVerification(ctx context.Context, in ResendVerificationInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if err := s.provider.ResendVerification(ctx, strings.ToLower(strings.TrimSpace(in.Email))); err != nil {
		middleware.Logger.WarnContext(ctx, "resend verification failed", slog.String("error", err.Error()))
	}
	return nil
}
