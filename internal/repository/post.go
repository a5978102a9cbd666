package repository

import (
	"context"

	"vecinu/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedQuery selects one page of a neighborhood feed.
type FeedQuery struct {
	NeighborhoodID uuid.UUID
	Category       models.PostCategory
	Cursor         *Cursor
	Limit          int
}

// SearchQuery selects one page of substring search results.
type SearchQuery struct {
	Query          string
	NeighborhoodID *uuid.UUID
	Category       models.PostCategory
	Cursor         *Cursor
	Limit          int
}

// AdminPostFilter narrows the moderation post listing.
type AdminPostFilter struct {
	Status models.PostStatus
	Query  string
	Limit  int
	Offset int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Feed(ctx context.Context, q FeedQuery) (Page[*models.Post], error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, cursor *Cursor, limit int) (Page[*models.Post], error)
	Search(ctx context.Context, q SearchQuery) (Page[*models.Post], error)
	AdminList(ctx context.Context, f AdminPostFilter) ([]*models.Post, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.PostStatus, fields map[string]any) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	AdjustCommentCount(ctx context.Context, id uuid.UUID, delta int) error
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, status models.PostStatus) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository {
	return &postRepository{db: tx}
}

// visibleStatuses are the statuses shown in public listings.
var visibleStatuses = []models.PostStatus{models.PostActive, models.PostSold}

func withPostDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("created_at ASC")
		})
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Scopes(withPostDetails).
		Preload("Neighborhood").
		First(&post, "posts.id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "Post", id)
	}
	return &post, nil
}

func postCursor(p *models.Post) string {
	return Cursor{CreatedAt: p.CreatedAt, ID: p.ID}.Encode()
}

func feedCursor(p *models.Post) string {
	pinned := p.IsPinned
	return Cursor{CreatedAt: p.CreatedAt, ID: p.ID, Pinned: &pinned}.Encode()
}

// Feed returns visible posts of one neighborhood ordered pinned first, then
// newest first with id as tie-break.
func (r *postRepository) Feed(ctx context.Context, q FeedQuery) (Page[*models.Post], error) {
	limit := ClampLimit(q.Limit)
	db := r.db.WithContext(ctx).
		Scopes(withPostDetails).
		Where("posts.neighborhood_id = ?", q.NeighborhoodID).
		Where("posts.status IN ?", visibleStatuses)
	if q.Category != "" {
		db = db.Where("posts.category = ?", q.Category)
	}
	db = applyFeedCursor(db, q.Cursor)

	var posts []*models.Post
	err := db.
		Order("posts.is_pinned DESC").
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit + 1).
		Find(&posts).Error
	if err != nil {
		return Page[*models.Post]{}, err
	}
	return pageOf(posts, limit, feedCursor), nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, cursor *Cursor, limit int) (Page[*models.Post], error) {
	limit = ClampLimit(limit)
	db := r.db.WithContext(ctx).
		Scopes(withPostDetails).
		Where("posts.author_id = ?", authorID).
		Where("posts.status IN ?", visibleStatuses)
	db = applyCursor(db, "posts", cursor, true)

	var posts []*models.Post
	err := db.Order("posts.created_at DESC").Order("posts.id DESC").
		Limit(limit + 1).
		Find(&posts).Error
	if err != nil {
		return Page[*models.Post]{}, err
	}
	return pageOf(posts, limit, postCursor), nil
}

// Search matches q case-insensitively against title and body of visible posts.
func (r *postRepository) Search(ctx context.Context, q SearchQuery) (Page[*models.Post], error) {
	limit := ClampLimit(q.Limit)
	pattern := likePattern(q.Query)
	db := r.db.WithContext(ctx).
		Scopes(withPostDetails).
		Where("posts.status IN ?", visibleStatuses).
		Where(`(LOWER(posts.title) LIKE LOWER(?) ESCAPE '\' OR LOWER(posts.body) LIKE LOWER(?) ESCAPE '\')`, pattern, pattern)
	if q.NeighborhoodID != nil {
		db = db.Where("posts.neighborhood_id = ?", *q.NeighborhoodID)
	}
	if q.Category != "" {
		db = db.Where("posts.category = ?", q.Category)
	}
	db = applyCursor(db, "posts", q.Cursor, true)

	var posts []*models.Post
	err := db.Order("posts.created_at DESC").Order("posts.id DESC").
		Limit(limit + 1).
		Find(&posts).Error
	if err != nil {
		return Page[*models.Post]{}, err
	}
	return pageOf(posts, limit, postCursor), nil
}

func (r *postRepository) AdminList(ctx context.Context, f AdminPostFilter) ([]*models.Post, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("posts.status = ?", f.Status)
		} else {
			db = db.Where("posts.status <> ?", models.PostDeleted)
		}
		if f.Query != "" {
			pattern := likePattern(f.Query)
			db = db.Where(`LOWER(posts.title) LIKE LOWER(?) ESCAPE '\' OR LOWER(posts.body) LIKE LOWER(?) ESCAPE '\'`, pattern, pattern)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Scopes(filter, withPostDetails).
		Preload("Neighborhood").
		Order("posts.created_at DESC").Order("posts.id DESC").
		Limit(f.Limit).Offset(f.Offset).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND status <> ?", id, models.PostDeleted).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// TransitionStatus moves the post from one status to another in a single
// conditional update. It fails with a Conflict error when the stored status
// is no longer from.
func (r *postRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.PostStatus, fields map[string]any) error {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError("post status changed concurrently, reload and retry")
	}
	return nil
}

func (r *postRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// AdjustCommentCount adds delta to comment_count, never going below zero.
func (r *postRepository) AdjustCommentCount(ctx context.Context, id uuid.UUID, delta int) error {
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("comment_count >= ?", -delta)
	}
	return q.UpdateColumn("comment_count", gorm.Expr("comment_count + ?", delta)).Error
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ? AND status IN ?", authorID, visibleStatuses).
		Count(&n).Error
	return n, err
}

func (r *postRepository) CountByStatus(ctx context.Context, status models.PostStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
