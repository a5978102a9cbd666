package repository

import (
	"context"

	"vecinu/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostImageRepository defines storage operations for post image metadata.
type PostImageRepository interface {
	WithTx(tx *gorm.DB) PostImageRepository
	Create(ctx context.Context, img *models.PostImage) error
	GetByID(ctx context.Context, postID, imageID uuid.UUID) (*models.PostImage, error)
	CountByPost(ctx context.Context, postID uuid.UUID) (int64, error)
	NextPosition(ctx context.Context, postID uuid.UUID) (int, error)
	Delete(ctx context.Context, imageID uuid.UUID) error
}

type postImageRepository struct {
	db *gorm.DB
}

// NewPostImageRepository returns a repository implementation for image metadata.
func NewPostImageRepository(db *gorm.DB) PostImageRepository {
	return &postImageRepository{db: db}
}

func (r *postImageRepository) WithTx(tx *gorm.DB) PostImageRepository {
	return &postImageRepository{db: tx}
}

func (r *postImageRepository) Create(ctx context.Context, img *models.PostImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *postImageRepository) GetByID(ctx context.Context, postID, imageID uuid.UUID) (*models.PostImage, error) {
	var img models.PostImage
	err := r.db.WithContext(ctx).
		Where("id = ? AND post_id = ?", imageID, postID).
		First(&img).Error
	if err != nil {
		return nil, notFound(err, "Image", imageID)
	}
	return &img, nil
}

func (r *postImageRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PostImage{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

// NextPosition returns the position after the post's last image.
func (r *postImageRepository) NextPosition(ctx context.Context, postID uuid.UUID) (int, error) {
	var maxPos *int
	err := r.db.WithContext(ctx).Model(&models.PostImage{}).
		Where("post_id = ?", postID).
		Select("MAX(position)").
		Scan(&maxPos).Error
	if err != nil {
		return 0, err
	}
	if maxPos == nil {
		return 0, nil
	}
	return *maxPos + 1, nil
}

func (r *postImageRepository) Delete(ctx context.Context, imageID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PostImage{}, "id = ?", imageID).Error
}
