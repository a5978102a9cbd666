package repository

import (
	"context"

	"vecinu/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uuid.UUID, cursor *Cursor, limit int) (Page[*models.Comment], error)
	ListReplies(ctx context.Context, parentID uuid.UUID) ([]*models.Comment, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.CommentStatus) error
	UpdateBody(ctx context.Context, id uuid.UUID, body string) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{db: tx}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Comment", id)
	}
	return &comment, nil
}

// ListTopLevel returns active top-level comments of a post, oldest first,
// with their active reply counts.
func (r *commentRepository) ListTopLevel(ctx context.Context, postID uuid.UUID, cursor *Cursor, limit int) (Page[*models.Comment], error) {
	limit = ClampLimit(limit)
	db := r.db.WithContext(ctx).
		Preload("Author").
		Where("comments.post_id = ? AND comments.parent_id IS NULL AND comments.status = ?", postID, models.CommentActive)
	db = applyCursor(db, "comments", cursor, false)

	var comments []*models.Comment
	err := db.Order("comments.created_at ASC").Order("comments.id ASC").
		Limit(limit + 1).
		Find(&comments).Error
	if err != nil {
		return Page[*models.Comment]{}, err
	}

	page := pageOf(comments, limit, func(c *models.Comment) string {
		return Cursor{CreatedAt: c.CreatedAt, ID: c.ID}.Encode()
	})
	if err := r.fillReplyCounts(ctx, page.Items); err != nil {
		return Page[*models.Comment]{}, err
	}
	return page, nil
}

func (r *commentRepository) fillReplyCounts(ctx context.Context, comments []*models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}

	type replyCount struct {
		ParentID uuid.UUID
		Count    int
	}
	var counts []replyCount
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("parent_id, COUNT(*) AS count").
		Where("parent_id IN ? AND status = ?", ids, models.CommentActive).
		Group("parent_id").
		Scan(&counts).Error
	if err != nil {
		return err
	}

	byParent := make(map[uuid.UUID]int, len(counts))
	for _, rc := range counts {
		byParent[rc.ParentID] = rc.Count
	}
	for _, c := range comments {
		c.ReplyCount = byParent[c.ID]
	}
	return nil
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID uuid.UUID) ([]*models.Comment, error) {
	var replies []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("parent_id = ? AND status = ?", parentID, models.CommentActive).
		Order("created_at ASC").Order("id ASC").
		Find(&replies).Error
	return replies, err
}

// TransitionStatus changes the status only when it still equals from.
func (r *commentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.CommentStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError("comment status changed concurrently, reload and retry")
	}
	return nil
}

func (r *commentRepository) UpdateBody(ctx context.Context, id uuid.UUID, body string) error {
	return r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND status <> ?", id, models.CommentDeleted).
		Updates(map[string]any{"body": body, "is_edited": true}).Error
}
