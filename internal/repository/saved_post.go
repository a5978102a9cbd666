package repository

import (
	"context"

	"vecinu/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavedPostRepository manages user bookmarks.
type SavedPostRepository interface {
	Save(ctx context.Context, userID, postID uuid.UUID) error
	Unsave(ctx context.Context, userID, postID uuid.UUID) error
	SavedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	List(ctx context.Context, userID uuid.UUID, cursor *Cursor, limit int) (Page[*models.SavedPost], error)
	SaverIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error)
}

type savedPostRepository struct {
	db *gorm.DB
}

// NewSavedPostRepository returns a GORM-backed SavedPostRepository.
func NewSavedPostRepository(db *gorm.DB) SavedPostRepository {
	return &savedPostRepository{db: db}
}

// Save is idempotent: saving an already saved post is a no-op.
func (r *savedPostRepository) Save(ctx context.Context, userID, postID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SavedPost{UserID: userID, PostID: postID}).Error
}

func (r *savedPostRepository) Unsave(ctx context.Context, userID, postID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.SavedPost{}).Error
}

func (r *savedPostRepository) SavedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	saved := make(map[uuid.UUID]bool, len(postIDs))
	if len(postIDs) == 0 {
		return saved, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		saved[id] = true
	}
	return saved, nil
}

// List returns the user's bookmarks, most recently saved first. Posts that
// are no longer visible are skipped.
func (r *savedPostRepository) List(ctx context.Context, userID uuid.UUID, cursor *Cursor, limit int) (Page[*models.SavedPost], error) {
	limit = ClampLimit(limit)
	db := r.db.WithContext(ctx).
		Joins("JOIN posts ON posts.id = saved_posts.post_id").
		Where("saved_posts.user_id = ?", userID).
		Where("posts.status IN ?", visibleStatuses).
		Preload("Post").
		Preload("Post.Author").
		Preload("Post.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	if cursor != nil {
		db = db.Where(
			"(saved_posts.created_at < ?) OR (saved_posts.created_at = ? AND saved_posts.post_id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []*models.SavedPost
	err := db.Order("saved_posts.created_at DESC").Order("saved_posts.post_id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return Page[*models.SavedPost]{}, err
	}
	return pageOf(rows, limit, func(s *models.SavedPost) string {
		return Cursor{CreatedAt: s.CreatedAt, ID: s.PostID}.Encode()
	}), nil
}

func (r *savedPostRepository) SaverIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).
		Where("post_id = ?", postID).
		Pluck("user_id", &ids).Error
	return ids, err
}
