package identity

import (
	"context"
	"log/slog"
	"time"

	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "blacklist:"

// Authenticator turns an access token into the local user row.
type Authenticator struct {
	tokens *Tokens
	users  repository.UserRepository
	rdb    *redis.Client
}

// NewAuthenticator wires token verification to the user table. rdb may be nil,
// in which case revocation is not checked.
func NewAuthenticator(tokens *Tokens, users repository.UserRepository, rdb *redis.Client) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, rdb: rdb}
}

// Verify checks the token and the revocation list without touching the database.
func (a *Authenticator) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if a.rdb != nil && claims.RevocationID() != "" {
		n, err := a.rdb.Exists(ctx, revokedPrefix+claims.RevocationID()).Result()
		switch {
		case err != nil:
			middleware.Logger.WarnContext(ctx, "token revocation check failed, allowing request",
				slog.String("error", err.Error()))
		case n > 0:
			return nil, models.NewAuthenticationError("Token has been revoked")
		}
	}
	return claims, nil
}

// Authenticate implements middleware.Authenticator.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := a.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	var user *models.User
	if claims.Email != "" {
		user, err = a.users.GetByEmail(ctx, claims.Email)
	} else {
		id, parseErr := uuid.Parse(claims.Subject)
		if parseErr != nil {
			return nil, models.NewAuthenticationError("Invalid token claims")
		}
		user, err = a.users.GetByID(ctx, id)
	}
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewAuthenticationError("User not found")
		}
		return nil, err
	}
	return user, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (a *Authenticator) Revoke(ctx context.Context, token string) error {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		// Already unusable.
		return nil
	}
	if a.rdb == nil || claims.RevocationID() == "" {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return a.rdb.Set(ctx, revokedPrefix+claims.RevocationID(), "1", ttl).Err()
}
