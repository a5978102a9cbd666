package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Envelope wraps every successful response.
type Envelope struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

// CursorMeta describes a cursor page.
type CursorMeta struct {
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"hasMore"`
}

// OffsetMeta describes a numbered admin page.
type OffsetMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(Envelope{Data: data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Data: data})
}

func cursorPage[T any](c *fiber.Ctx, page service.CursorPage[T]) error {
	return c.JSON(Envelope{
		Data: nonNil(page.Items),
		Meta: CursorMeta{Cursor: page.Cursor, HasMore: page.HasMore},
	})
}

func offsetPage[T any](c *fiber.Ctx, page service.OffsetPage[T]) error {
	return c.JSON(Envelope{
		Data: nonNil(page.Items),
		Meta: OffsetMeta{Total: page.Total, Page: page.Page, Limit: page.Limit},
	})
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// fail writes the error envelope. Unclassified errors are logged with the
// request context before they collapse to a generic 500.
func fail(c *fiber.Ctx, err error) error {
	if appErr, isApp := models.AsAppError(err); !isApp || appErr.Status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, err)
}

// ErrorHandler is the fiber error handler. It maps errors escaping handlers
// and middleware (unknown routes, body limits, malformed JSON) to the envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return models.RespondWithError(c, fe)
	}
	return fail(c, err)
}

// parseBody decodes the JSON body into dst.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// parseUUID extracts a route parameter by name as a UUID. The error message is
// derived from the parameter name ("id" -> "Invalid ID", "imageId" -> "Invalid image ID").
func parseUUID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, models.NewValidationError("Invalid " + humanizeParam(param))
	}
	return id, nil
}

// queryUUID parses a required UUID query parameter.
func queryUUID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return uuid.Nil, models.NewFieldValidationError("Invalid query", map[string][]string{key: {"is required"}})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.NewFieldValidationError("Invalid query", map[string][]string{key: {"must be a valid UUID"}})
	}
	return id, nil
}

// queryBool parses an optional boolean query parameter; absent yields nil.
func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, models.NewFieldValidationError("Invalid query", map[string][]string{key: {"must be true or false"}})
	}
	return &v, nil
}

// cursorQuery reads the cursor and limit query parameters. Limits are clamped
// by the repositories.
func cursorQuery(c *fiber.Ctx) (string, int) {
	return c.Query("cursor"), c.QueryInt("limit", 0)
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "imageId" -> "image ID", "parentCommentId" -> "parent comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}
