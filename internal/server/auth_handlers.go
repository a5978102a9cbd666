package server

import (
	"time"

	"vecinu/internal/middleware"
	"vecinu/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create an account. The identity provider sends the verification e-mail.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration"
// @Success 201 {object} Envelope{data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := s.svc.Auth.Register(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, user)
}

// Login handles POST /api/auth/login
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Credentials"
// @Success 200 {object} Envelope{data=service.LoginResult}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	result, err := s.svc.Auth.Login(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	s.setSessionCookie(c, result.AccessToken, result.ExpiresAt)
	return ok(c, result)
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.svc.Auth.Logout(c.UserContext(), middleware.CurrentToken(c)); err != nil {
		return fail(c, err)
	}
	c.ClearCookie(middleware.SessionCookie)
	return ok(c, fiber.Map{"loggedOut": true})
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.svc.Users.Me(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, user)
}

// ResendVerification handles POST /api/auth/resend-verification. The answer
// is the same whether or not the address is registered.
func (s *Server) ResendVerification(c *fiber.Ctx) error {
	var req service.ResendVerificationInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if err := s.svc.Auth.ResendVerification(c.UserContext(), req); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "If the address is registered, a verification e-mail has been sent"})
}
