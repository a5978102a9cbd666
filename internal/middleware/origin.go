package middleware

import (
	"net/url"

	"vecinu/internal/models"

	"github.com/gofiber/fiber/v2"
)

// OriginGuard rejects state-changing requests whose Origin (or Referer) does
// not match appURL. Requests carrying neither header pass, as do all requests
// when appURL is empty.
func OriginGuard(appURL string) fiber.Handler {
	allowed := ""
	if u, err := url.Parse(appURL); err == nil && u.Scheme != "" && u.Host != "" {
		allowed = u.Scheme + "://" + u.Host
	}

	return func(c *fiber.Ctx) error {
		if allowed == "" {
			return c.Next()
		}
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		default:
			return c.Next()
		}

		if origin := c.Get(fiber.HeaderOrigin); origin != "" {
			if origin != allowed {
				return models.RespondWithError(c, models.NewValidationError("invalid request origin"))
			}
			return c.Next()
		}
		if referer := c.Get(fiber.HeaderReferer); referer != "" {
			u, err := url.Parse(referer)
			if err != nil || u.Scheme+"://"+u.Host != allowed {
				return models.RespondWithError(c, models.NewValidationError("invalid request origin"))
			}
		}
		return c.Next()
	}
}
