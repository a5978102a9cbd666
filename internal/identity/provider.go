package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vecinu/internal/config"
	"vecinu/internal/models"
	"vecinu/internal/repository"
)

// ErrInvalidCredentials is returned by SignIn for an unknown e-mail or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Session is the result of a successful sign-in.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	Email       string
}

// Provider is the external identity service. Implementations own credentials
// and e-mail verification; the application owns the user profile row.
type Provider interface {
	// SignUp registers credentials for user. It may fill provider-managed
	// fields on user (password hash, verification state) before the row is stored.
	SignUp(ctx context.Context, user *models.User, password string) error
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	ResendVerification(ctx context.Context, email string) error
}

// NewProvider selects the provider named by AUTH_PROVIDER.
func NewProvider(cfg *config.Config, users repository.UserRepository, tokens *Tokens) (Provider, error) {
	switch cfg.AuthProvider {
	case "", "local":
		return NewLocalProvider(users, tokens), nil
	case "gotrue":
		return NewGoTrueProvider(cfg.AuthURL, cfg.AuthAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.AuthProvider)
	}
}
