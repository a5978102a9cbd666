package service

import (
	"context"
	"fmt"
	"log/slog"

	"vecinu/internal/cache"
	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/observability"
	"vecinu/internal/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// MaxImagesPerPost caps the gallery of a single post.
const MaxImagesPerPost = 4

// ImageService attaches images to posts. Uploads are normalised to WebP
// before they reach object storage.
type ImageService struct {
	repos *Repositories
	store storage.ObjectStore
	cache *cache.Store
}

func NewImageService(repos *Repositories, store storage.ObjectStore, cacheStore *cache.Store) *ImageService {
	return &ImageService{repos: repos, store: store, cache: cacheStore}
}

func (s *ImageService) ownedPost(ctx context.Context, actor *models.User, postID uuid.UUID) (*models.Post, error) {
	post, err := s.repos.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Status == models.PostDeleted {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if post.AuthorID != actor.ID {
		return nil, models.NewAuthorizationError("You can only change images of your own posts")
	}
	return post, nil
}

// Upload stores data as the next image of the post.
func (s *ImageService) Upload(ctx context.Context, actor *models.User, postID uuid.UUID, data []byte) (_ *models.PostImage, err error) {
	ctx, span := observability.StartSpan(ctx, "ImageService.Upload",
		attribute.String("post_id", postID.String()), attribute.Int("size", len(data)))
	defer span.End(&err)
	defer func() {
		outcome := "stored"
		if err != nil {
			outcome = "rejected"
		}
		observability.ImageUploads.WithLabelValues(outcome).Inc()
	}()

	if _, err := s.ownedPost(ctx, actor, postID); err != nil {
		return nil, err
	}
	count, err := s.repos.Images.CountByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if count >= MaxImagesPerPost {
		return nil, models.NewValidationError(fmt.Sprintf("A post can have at most %d images", MaxImagesPerPost))
	}

	img, err := storage.NormalizeImage(data)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("posts/%s/%s.webp", postID, uuid.NewString())
	url, err := s.store.Put(ctx, key, img.Data, storage.ContentTypeWebP)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	position, err := s.repos.Images.NextPosition(ctx, postID)
	if err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}
	thumb := storage.ThumbnailURL(url)
	width, height := img.Width, img.Height
	record := &models.PostImage{
		PostID:       postID,
		ObjectKey:    key,
		URL:          url,
		ThumbnailURL: &thumb,
		Width:        &width,
		Height:       &height,
		SizeBytes:    int64(len(img.Data)),
		Position:     position,
	}
	if err := s.repos.Images.Create(ctx, record); err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}

	s.cache.InvalidatePost(ctx, postID)
	s.cache.InvalidateFeed(ctx)
	return record, nil
}

// Delete removes an image from the post. The stored object is removed on a
// best-effort basis.
func (s *ImageService) Delete(ctx context.Context, actor *models.User, postID, imageID uuid.UUID) error {
	if _, err := s.ownedPost(ctx, actor, postID); err != nil {
		return err
	}
	img, err := s.repos.Images.GetByID(ctx, postID, imageID)
	if err != nil {
		return err
	}
	if err := s.repos.Images.Delete(ctx, img.ID); err != nil {
		return err
	}
	s.removeObject(ctx, img.ObjectKey)

	s.cache.InvalidatePost(ctx, postID)
	s.cache.InvalidateFeed(ctx)
	return nil
}

func (s *ImageService) removeObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		middleware.Logger.WarnContext(ctx, "object delete failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}
