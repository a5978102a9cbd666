// Package middleware provides the HTTP middleware stack: logging, authentication,
// rate limiting, origin checks, tracing and metrics.
package middleware

import (
	"context"
	"strings"

	"vecinu/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCookie carries the access token for browser clients.
const SessionCookie = "vecinu_session"

const (
	localUser  = "user"
	localToken = "accessToken"
)

// Authenticator resolves a bearer token to a local user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// ExtractToken returns the access token from the Authorization header or the session cookie.
func ExtractToken(c *fiber.Ctx) (string, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", models.NewAuthenticationError("Invalid authorization header format")
		}
		return strings.TrimSpace(token), nil
	}
	if cookie := c.Cookies(SessionCookie); cookie != "" {
		return cookie, nil
	}
	return "", models.NewAuthenticationError("")
}

func setUser(c *fiber.Ctx, user *models.User, token string) {
	c.Locals(localUser, user)
	c.Locals(localToken, token)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, user.ID.String()))
}

// AuthRequired rejects requests without a valid session.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := ExtractToken(c)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		setUser(c, user, token)
		return c.Next()
	}
}

// OptionalAuth attaches the caller when a valid session is present and
// otherwise continues anonymously.
func OptionalAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := ExtractToken(c)
		if err != nil {
			return c.Next()
		}
		if user, err := auth.Authenticate(c.UserContext(), token); err == nil {
			setUser(c, user, token)
		}
		return c.Next()
	}
}

// RequireModerator allows moderators and admins. Must run after AuthRequired.
func RequireModerator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return models.RespondWithError(c, models.NewAuthenticationError(""))
		}
		if !user.IsModerator() {
			return models.RespondWithError(c, models.NewAuthorizationError("Moderator access required"))
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// CurrentUserID returns the authenticated user's id or uuid.Nil.
func CurrentUserID(c *fiber.Ctx) uuid.UUID {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return uuid.Nil
}

// CurrentToken returns the access token used to authenticate the request.
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(localToken).(string)
	return token
}

// SetCurrentUser attaches user to the request. Intended for tests and internal wiring.
func SetCurrentUser(c *fiber.Ctx, user *models.User) {
	setUser(c, user, "")
}
