package server

import (
	"vecinu/internal/middleware"
	"vecinu/internal/service"

	"github.com/gofiber/fiber/v2"
)

// deleteRequest carries the optional moderation reason of a DELETE.
type deleteRequest struct {
	Reason string `json:"reason"`
}

func parseDeleteReason(c *fiber.Ctx) (string, error) {
	if len(c.Body()) == 0 {
		return c.Query("reason"), nil
	}
	var req deleteRequest
	if err := parseBody(c, &req); err != nil {
		return "", err
	}
	return req.Reason, nil
}

// GetFeed handles GET /api/posts
// @Summary Neighborhood feed
// @Description Visible posts of a neighborhood, pinned first then newest. Defaults to the caller's neighborhood.
// @Tags posts
// @Produce json
// @Param neighborhood query string false "Neighborhood slug"
// @Param category query string false "Category"
// @Param cursor query string false "Cursor from the previous page"
// @Param limit query int false "Page size (max 50)"
// @Success 200 {object} Envelope{data=[]models.Post,meta=CursorMeta}
// @Router /posts [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	cursor, limit := cursorQuery(c)
	page, err := s.svc.Posts.Feed(c.UserContext(), service.FeedInput{
		Neighborhood: c.Query("neighborhood"),
		Category:     c.Query("category"),
		Cursor:       cursor,
		Limit:        limit,
	}, middleware.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return cursorPage(c, page)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post"
// @Success 201 {object} Envelope{data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	post, err := s.svc.Posts.Create(c.UserContext(), middleware.CurrentUserID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	post, err := s.svc.Posts.Get(c.UserContext(), id, middleware.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, post)
}

// UpdatePost handles PATCH /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdatePostInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	post, err := s.svc.Posts.Update(c.UserContext(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	reason, err := parseDeleteReason(c)
	if err != nil {
		return fail(c, err)
	}

	if err := s.svc.Posts.Delete(c.UserContext(), middleware.CurrentUser(c), id, reason); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"deleted": true})
}

// ToggleSold handles PATCH /api/posts/:id/sold
func (s *Server) ToggleSold(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	post, err := s.svc.Posts.ToggleSold(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, post)
}

// SavePost handles POST /api/posts/:id/save
func (s *Server) SavePost(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := s.svc.Posts.Save(c.UserContext(), middleware.CurrentUserID(c), id); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"saved": true})
}

// UnsavePost handles DELETE /api/posts/:id/save
func (s *Server) UnsavePost(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := s.svc.Posts.Unsave(c.UserContext(), middleware.CurrentUserID(c), id); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"saved": false})
}

// GetSavedPosts handles GET /api/posts/saved
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	cursor, limit := cursorQuery(c)
	page, err := s.svc.Posts.ListSaved(c.UserContext(), middleware.CurrentUserID(c), cursor, limit)
	if err != nil {
		return fail(c, err)
	}
	return cursorPage(c, page)
}

// SearchPosts handles GET /api/search
// @Summary Search posts
// @Tags posts
// @Produce json
// @Param q query string true "Query (2..100 characters)"
// @Param neighborhood query string false "Neighborhood slug"
// @Param category query string false "Category"
// @Param cursor query string false "Cursor"
// @Success 200 {object} Envelope{data=[]models.Post,meta=CursorMeta}
// @Failure 400 {object} models.ErrorResponse
// @Router /search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	cursor, limit := cursorQuery(c)
	page, err := s.svc.Posts.Search(c.UserContext(), service.SearchInput{
		Query:        c.Query("q"),
		Neighborhood: c.Query("neighborhood"),
		Category:     c.Query("category"),
		Cursor:       cursor,
		Limit:        limit,
	}, middleware.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return cursorPage(c, page)
}
