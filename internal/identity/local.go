package identity

import (
	"context"
	"fmt"
	"log/slog"

	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// LocalProvider keeps bcrypt password hashes on the user row and issues its
// own access tokens. It backs development and self-hosted deployments that
// run without an external identity service.
type LocalProvider struct {
	users  repository.UserRepository
	tokens *Tokens
	cost   int
}

// NewLocalProvider returns a LocalProvider using bcrypt.DefaultCost.
func NewLocalProvider(users repository.UserRepository, tokens *Tokens) *LocalProvider {
	return &LocalProvider{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

// SignUp hashes the password onto user. There is no mail transport, so the
// address is treated as verified.
func (p *LocalProvider) SignUp(ctx context.Context, user *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.EmailVerified = true
	middleware.Logger.InfoContext(ctx, "local sign-up, e-mail verification skipped",
		slog.String("email", user.Email))
	return nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expires, err := p.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, ExpiresAt: expires, Email: user.Email}, nil
}

// SignOut has nothing to do locally; the Authenticator revokes the token.
func (p *LocalProvider) SignOut(context.Context, string) error {
	return nil
}

func (p *LocalProvider) ResendVerification(ctx context.Context, email string) error {
	middleware.Logger.InfoContext(ctx, "verification e-mail requested with local provider, nothing sent",
		slog.String("email", email))
	return nil
}
