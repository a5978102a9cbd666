package server

import (
	"vecinu/internal/middleware"
	"vecinu/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListNeighborhoods handles GET /api/neighborhoods
// @Summary List neighborhoods
// @Tags neighborhoods
// @Produce json
// @Success 200 {object} Envelope{data=[]models.Neighborhood}
// @Router /neighborhoods [get]
func (s *Server) ListNeighborhoods(c *fiber.Ctx) error {
	neighborhoods, err := s.svc.Users.Neighborhoods(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, nonNil(neighborhoods))
}

// SelectNeighborhood handles POST /api/user/select-neighborhood
func (s *Server) SelectNeighborhood(c *fiber.Ctx) error {
	var req service.SelectNeighborhoodInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := s.svc.Users.SelectNeighborhood(c.UserContext(), middleware.CurrentUserID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, user)
}

// GetSettings handles GET /api/user/settings
func (s *Server) GetSettings(c *fiber.Ctx) error {
	user, err := s.svc.Users.Settings(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, user)
}

// UpdateSettings handles PATCH /api/user/settings
func (s *Server) UpdateSettings(c *fiber.Ctx) error {
	var req service.UpdateSettingsInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := s.svc.Users.UpdateSettings(c.UserContext(), middleware.CurrentUserID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, user)
}

// UpdateProfile handles PATCH /api/user/profile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := s.svc.Users.UpdateProfile(c.UserContext(), middleware.CurrentUserID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, user)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Public profile
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} Envelope{data=service.PublicProfile}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	profile, err := s.svc.Users.Profile(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, profile)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	cursor, limit := cursorQuery(c)

	page, err := s.svc.Posts.ListByAuthor(c.UserContext(), id, cursor, limit, middleware.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return cursorPage(c, page)
}
