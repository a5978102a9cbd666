package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"vecinu/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	users map[string]*models.User
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, models.NewAuthenticationError("Invalid or expired token")
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	member := &models.User{ID: uuid.New(), Role: models.RoleUser}
	auth := stubAuthenticator{users: map[string]*models.User{"good": member}}

	app := fiber.New()
	app.Get("/test", AuthRequired(auth), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": CurrentUserID(c).String(), "token": CurrentToken(c)})
	})

	tests := []struct {
		name           string
		authHeader     string
		cookie         string
		expectedStatus int
	}{
		{"bearer token", "Bearer good", "", http.StatusOK},
		{"session cookie", "", "good", http.StatusOK},
		{"missing credentials", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, member.ID.String(), body["userID"])
				assert.Equal(t, "good", body["token"])
			} else {
				assert.Equal(t, models.CodeAuthentication, body["code"])
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	t.Parallel()

	member := &models.User{ID: uuid.New()}
	auth := stubAuthenticator{users: map[string]*models.User{"good": member}}

	app := fiber.New()
	app.Get("/feed", OptionalAuth(auth), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUserID(c).String())
	})

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer bad")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, member.ID.String(), string(body))
}

func TestRequireModerator(t *testing.T) {
	t.Parallel()

	users := map[string]*models.User{
		"user":  {ID: uuid.New(), Role: models.RoleUser},
		"mod":   {ID: uuid.New(), Role: models.RoleModerator},
		"admin": {ID: uuid.New(), Role: models.RoleAdmin},
	}
	app := fiber.New()
	app.Get("/admin", AuthRequired(stubAuthenticator{users: users}), RequireModerator(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	expect := map[string]int{"user": http.StatusForbidden, "mod": http.StatusNoContent, "admin": http.StatusNoContent}
	for token, status := range expect {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode, token)
	}
}

func TestOriginGuard(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Use(OriginGuard("https://vecinu.ro/app"))
	app.All("/api/x", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	tests := []struct {
		name    string
		method  string
		origin  string
		referer string
		status  int
	}{
		{"get ignores origin", http.MethodGet, "https://evil.test", "", http.StatusOK},
		{"matching origin", http.MethodPost, "https://vecinu.ro", "", http.StatusOK},
		{"foreign origin", http.MethodPost, "https://evil.test", "", http.StatusBadRequest},
		{"matching referer", http.MethodPatch, "", "https://vecinu.ro/posts/1", http.StatusOK},
		{"foreign referer", http.MethodDelete, "", "https://evil.test/x", http.StatusBadRequest},
		{"no headers", http.MethodPost, "", "", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/api/x", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if tt.referer != "" {
			req.Header.Set("Referer", tt.referer)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, tt.name)
	}
}
