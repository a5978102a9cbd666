package server

import (
	"vecinu/internal/middleware"
	"vecinu/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminStats handles GET /api/admin/stats
// @Summary Moderation dashboard counters
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=service.Stats}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/stats [get]
func (s *Server) AdminStats(c *fiber.Ctx) error {
	stats, err := s.svc.Moderation.Stats(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, stats)
}

// AdminListReports handles GET /api/admin/reports?status&page
func (s *Server) AdminListReports(c *fiber.Ctx) error {
	page, err := s.svc.Moderation.ListReports(c.UserContext(), c.Query("status"), c.QueryInt("page", 1))
	if err != nil {
		return fail(c, err)
	}
	return offsetPage(c, page)
}

// AdminGetReport handles GET /api/admin/reports/:id
func (s *Server) AdminGetReport(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	detail, err := s.svc.Moderation.GetReport(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, detail)
}

// AdminResolveReport handles PATCH /api/admin/reports/:id
// @Summary Resolve or dismiss a report
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body service.ResolveReportInput true "Decision"
// @Success 200 {object} Envelope{data=models.Report}
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/reports/{id} [patch]
func (s *Server) AdminResolveReport(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.ResolveReportInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	report, err := s.svc.Moderation.ResolveReport(c.UserContext(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, report)
}

// AdminListPosts handles GET /api/admin/posts?filter&q&page
func (s *Server) AdminListPosts(c *fiber.Ctx) error {
	page, err := s.svc.Moderation.ListPosts(c.UserContext(), c.Query("filter"), c.Query("q"), c.QueryInt("page", 1))
	if err != nil {
		return fail(c, err)
	}
	return offsetPage(c, page)
}

// AdminModeratePost handles PATCH /api/admin/posts/:id
func (s *Server) AdminModeratePost(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.ModerateContentInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	post, err := s.svc.Moderation.ModeratePost(c.UserContext(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, post)
}

// AdminModerateComment handles PATCH /api/admin/comments/:id
func (s *Server) AdminModerateComment(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.ModerateContentInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	comment, err := s.svc.Moderation.ModerateComment(c.UserContext(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, comment)
}

// AdminListUsers handles GET /api/admin/users?q&banned&page
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	banned, err := queryBool(c, "banned")
	if err != nil {
		return fail(c, err)
	}

	page, err := s.svc.Moderation.ListUsers(c.UserContext(), c.Query("q"), banned, c.QueryInt("page", 1))
	if err != nil {
		return fail(c, err)
	}
	return offsetPage(c, page)
}

// AdminModerateUser handles PATCH /api/admin/users/:id
// @Summary Ban, unban or change the role of a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body service.ModerateUserInput true "Action"
// @Success 200 {object} Envelope{data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/users/{id} [patch]
func (s *Server) AdminModerateUser(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.ModerateUserInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := s.svc.Moderation.ModerateUser(c.UserContext(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, user)
}

// AdminListAuditLogs handles GET /api/admin/audit-logs?targetType&targetId&page
func (s *Server) AdminListAuditLogs(c *fiber.Ctx) error {
	page, err := s.svc.Moderation.ListAuditLogs(c.UserContext(), service.AuditLogQuery{
		TargetType: c.Query("targetType"),
		TargetID:   c.Query("targetId"),
		Page:       c.QueryInt("page", 1),
	})
	if err != nil {
		return fail(c, err)
	}
	return offsetPage(c, page)
}
