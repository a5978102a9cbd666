package server

import (
	"fmt"
	"io"

	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadPostImage handles POST /api/posts/:id/images
// @Summary Upload post image
// @Description Multipart field "image": JPEG, PNG, WebP or GIF up to 5MB. Stored as WebP, at most 2048px.
// @Tags posts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param image formData file true "Image"
// @Success 201 {object} Envelope{data=models.PostImage}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id}/images [post]
func (s *Server) UploadPostImage(c *fiber.Ctx) error {
	postID, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return fail(c, models.NewValidationError("No file uploaded"))
	}
	if file.Size > storage.MaxUploadBytes {
		return fail(c, models.NewValidationError(
			fmt.Sprintf("File too large (max %dMB)", storage.MaxUploadBytes/(1024*1024))))
	}

	src, err := file.Open()
	if err != nil {
		return fail(c, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(io.LimitReader(src, storage.MaxUploadBytes+1))
	if err != nil {
		return fail(c, models.NewValidationError("Unable to read uploaded file"))
	}

	image, err := s.svc.Images.Upload(c.UserContext(), middleware.CurrentUser(c), postID, content)
	if err != nil {
		return fail(c, err)
	}
	return created(c, image)
}

// DeletePostImage handles DELETE /api/posts/:id/images/:imageId
func (s *Server) DeletePostImage(c *fiber.Ctx) error {
	postID, err := parseUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	imageID, err := parseUUID(c, "imageId")
	if err != nil {
		return fail(c, err)
	}

	if err := s.svc.Images.Delete(c.UserContext(), middleware.CurrentUser(c), postID, imageID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"deleted": true})
}
