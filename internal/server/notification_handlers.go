package server

import (
	"vecinu/internal/middleware"
	"vecinu/internal/service"

	"github.com/gofiber/fiber/v2"
)

// NotificationMeta extends the cursor meta with the unread counter.
type NotificationMeta struct {
	CursorMeta
	UnreadCount int64 `json:"unreadCount"`
}

// SubmitReport handles POST /api/reports
// @Summary Report content
// @Description Report a post, comment or user. A second active report by the same reporter is acknowledged without creating a row.
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SubmitReportInput true "Report"
// @Success 201 {object} Envelope{data=service.ReportOutcome}
// @Success 200 {object} Envelope{data=service.ReportOutcome}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reports [post]
func (s *Server) SubmitReport(c *fiber.Ctx) error {
	var req service.SubmitReportInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	outcome, err := s.svc.Reports.Submit(c.UserContext(), middleware.CurrentUserID(c), req)
	if err != nil {
		return fail(c, err)
	}
	if outcome.ReportID == nil {
		return ok(c, outcome)
	}
	return created(c, outcome)
}

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	cursor, limit := cursorQuery(c)
	unreadOnly := c.QueryBool("unreadOnly", false)

	page, unread, err := s.svc.Notifications.List(c.UserContext(), middleware.CurrentUserID(c), unreadOnly, cursor, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(Envelope{
		Data: nonNil(page.Items),
		Meta: NotificationMeta{
			CursorMeta:  CursorMeta{Cursor: page.Cursor, HasMore: page.HasMore},
			UnreadCount: unread,
		},
	})
}

// MarkNotificationRead handles PATCH /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := s.svc.Notifications.MarkRead(c.UserContext(), middleware.CurrentUserID(c), id); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"read": true})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	updated, err := s.svc.Notifications.MarkAllRead(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"updated": updated})
}
