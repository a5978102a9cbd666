package server

import (
	"vecinu/internal/middleware"
	"vecinu/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/comments?postId=
// @Summary List comments
// @Description Top-level active comments of a post, oldest first, with reply counts.
// @Tags comments
// @Produce json
// @Param postId query string true "Post ID"
// @Param cursor query string false "Cursor"
// @Param limit query int false "Page size (max 50)"
// @Success 200 {object} Envelope{data=[]models.Comment,meta=CursorMeta}
// @Router /comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := queryUUID(c, "postId")
	if err != nil {
		return fail(c, err)
	}
	cursor, limit := cursorQuery(c)

	page, err := s.svc.Comments.List(c.UserContext(), postID, cursor, limit, middleware.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return cursorPage(c, page)
}

// GetReplies handles GET /api/comments/:id/replies
func (s *Server) GetReplies(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	replies, err := s.svc.Comments.Replies(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, nonNil(replies))
}

// CreateComment handles POST /api/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateCommentInput true "Comment"
// @Success 201 {object} Envelope{data=models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req service.CreateCommentInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	comment, err := s.svc.Comments.Create(c.UserContext(), middleware.CurrentUserID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, comment)
}

// UpdateComment handles PATCH /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateCommentInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	comment, err := s.svc.Comments.Update(c.UserContext(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	reason, err := parseDeleteReason(c)
	if err != nil {
		return fail(c, err)
	}

	if err := s.svc.Comments.Delete(c.UserContext(), middleware.CurrentUser(c), id, reason); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"deleted": true})
}
