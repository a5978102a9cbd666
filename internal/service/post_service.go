package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"vecinu/internal/cache"
	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/observability"
	"vecinu/internal/repository"
	"vecinu/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// CacheTTLs configures cache-aside lifetimes.
type CacheTTLs struct {
	Feed time.Duration
	Post time.Duration
}

// PostService owns the post lifecycle: feed reads, creation, edits, the sold
// toggle, soft deletion and bookmarks.
type PostService struct {
	db     *gorm.DB
	repos  *Repositories
	cache  *cache.Store
	notify *NotificationService
	ttl    CacheTTLs
	now    func() time.Time
}

func NewPostService(db *gorm.DB, repos *Repositories, store *cache.Store, notify *NotificationService, ttl CacheTTLs) *PostService {
	if ttl.Feed <= 0 {
		ttl.Feed = cache.DefaultFeedTTL
	}
	if ttl.Post <= 0 {
		ttl.Post = cache.DefaultPostTTL
	}
	return &PostService{db: db, repos: repos, cache: store, notify: notify, ttl: ttl, now: time.Now}
}

type FeedInput struct {
	Neighborhood string
	Category     string
	Cursor       string
	Limit        int
}

type CreatePostInput struct {
	Title      *string             `json:"title" validate:"omitempty,max=200"`
	Body       string              `json:"body" validate:"required,min=10,max=5000"`
	Category   models.PostCategory `json:"category" validate:"required,category"`
	PriceCents *int64              `json:"priceCents" validate:"omitempty,min=0,max=100000000"`
	IsFree     bool                `json:"isFree"`
}

type UpdatePostInput struct {
	Title      *string              `json:"title" validate:"omitempty,max=200"`
	Body       *string              `json:"body" validate:"omitempty,min=10,max=5000"`
	Category   *models.PostCategory `json:"category" validate:"omitempty,category"`
	PriceCents *int64               `json:"priceCents" validate:"omitempty,min=0,max=100000000"`
	IsFree     *bool                `json:"isFree"`
	Status     *models.PostStatus   `json:"status" validate:"omitempty,oneof=active sold"`
}

type SearchInput struct {
	Query        string
	Neighborhood string
	Category     string
	Cursor       string
	Limit        int
}

func parseCategory(raw string) (models.PostCategory, error) {
	if raw == "" {
		return "", nil
	}
	category := models.PostCategory(strings.ToUpper(raw))
	if !category.Valid() {
		return "", models.NewValidationError("Unknown category")
	}
	return category, nil
}

// Feed returns visible posts of a neighborhood. Without an explicit
// neighborhood the viewer's own is used. The first page is served through
// the feed cache.
func (s *PostService) Feed(ctx context.Context, in FeedInput, viewer *models.User) (_ CursorPage[*models.Post], err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.Feed", attribute.String("neighborhood", in.Neighborhood))
	defer span.End(&err)

	category, err := parseCategory(in.Category)
	if err != nil {
		return CursorPage[*models.Post]{}, err
	}
	cursor, err := repository.DecodeCursor(in.Cursor)
	if err != nil {
		return CursorPage[*models.Post]{}, err
	}

	var neighborhood *models.Neighborhood
	switch {
	case in.Neighborhood != "":
		neighborhood, err = s.repos.Neighborhoods.GetBySlug(ctx, in.Neighborhood)
	case viewer != nil && viewer.NeighborhoodID != nil:
		neighborhood, err = s.repos.Neighborhoods.GetByID(ctx, *viewer.NeighborhoodID)
	default:
		return CursorPage[*models.Post]{}, models.NewValidationError("neighborhood is required")
	}
	if err != nil {
		return CursorPage[*models.Post]{}, err
	}

	query := repository.FeedQuery{
		NeighborhoodID: neighborhood.ID,
		Category:       category,
		Cursor:         cursor,
		Limit:          in.Limit,
	}
	fetch := func(dest *repository.Page[*models.Post]) func() error {
		return func() error {
			page, err := s.repos.Posts.Feed(ctx, query)
			*dest = page
			return err
		}
	}

	var page repository.Page[*models.Post]
	if cursor == nil && repository.ClampLimit(in.Limit) == repository.DefaultPageSize {
		key := cache.FeedKey(neighborhood.Slug, string(category))
		err = s.cache.Aside(ctx, cache.FeedNamespace, key, &page, s.ttl.Feed, fetch(&page))
	} else {
		err = fetch(&page)()
	}
	if err != nil {
		return CursorPage[*models.Post]{}, err
	}

	if err := s.fillSaved(ctx, viewer, page.Items); err != nil {
		return CursorPage[*models.Post]{}, err
	}
	return cursorPage(page), nil
}

func (s *PostService) fillSaved(ctx context.Context, viewer *models.User, posts []*models.Post) error {
	if viewer == nil || len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	saved, err := s.repos.SavedPosts.SavedPostIDs(ctx, viewer.ID, ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.IsSaved = saved[p.ID]
	}
	return nil
}

// Create publishes a post into the author's neighborhood.
func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, in CreatePostInput) (_ *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.Create", attribute.String("category", string(in.Category)))
	defer span.End(&err)

	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	author, err := loadActiveUser(ctx, s.repos.Users, authorID)
	if err != nil {
		return nil, err
	}
	if author.NeighborhoodID == nil {
		return nil, models.NewValidationError("Select a neighborhood before posting")
	}

	body := validation.SanitizeText(in.Body)
	if len([]rune(body)) < 10 {
		return nil, models.NewValidationError("Post body is too short once markup is removed")
	}

	post := &models.Post{
		AuthorID:       author.ID,
		NeighborhoodID: *author.NeighborhoodID,
		Title:          validation.SanitizeOptional(in.Title),
		Body:           body,
		Category:       in.Category,
		PriceCents:     in.PriceCents,
		IsFree:         in.IsFree,
	}
	if err := s.repos.Posts.Create(ctx, post); err != nil {
		return nil, err
	}

	observability.PostsCreated.WithLabelValues(string(post.Category)).Inc()
	s.cache.InvalidateFeed(ctx)

	return s.repos.Posts.GetByID(ctx, post.ID)
}

// Get loads a post for display and counts the view. Hidden posts are only
// visible to their author and moderators; deleted posts do not exist.
func (s *PostService) Get(ctx context.Context, id uuid.UUID, viewer *models.User) (*models.Post, error) {
	var post models.Post
	err := s.cache.Aside(ctx, cache.PostNamespace, cache.PostKey(id), &post, s.ttl.Post, func() error {
		p, err := s.repos.Posts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		post = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !canView(&post, viewer) {
		return nil, models.NewNotFoundError("Post", id)
	}

	if err := s.repos.Posts.IncrementViews(ctx, id); err != nil {
		middleware.Logger.WarnContext(ctx, "post view count update failed",
			slog.String("post_id", id.String()), slog.String("error", err.Error()))
	} else {
		post.ViewCount++
	}

	if err := s.fillSaved(ctx, viewer, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

func canView(post *models.Post, viewer *models.User) bool {
	switch post.Status {
	case models.PostDeleted:
		return false
	case models.PostHidden:
		return viewer != nil && (viewer.ID == post.AuthorID || viewer.IsModerator())
	default:
		return true
	}
}

// loadLive returns a post that has not been deleted.
func (s *PostService) loadLive(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.repos.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status == models.PostDeleted {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

func (s *PostService) invalidate(ctx context.Context, id uuid.UUID, feed bool) {
	s.cache.InvalidatePost(ctx, id)
	if feed {
		s.cache.InvalidateFeed(ctx)
	}
}

// Update applies an author's edit. A status change goes through the post
// state machine.
func (s *PostService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in UpdatePostInput) (*models.Post, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	post, err := s.loadLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, models.NewAuthorizationError("You can only edit your own posts")
	}

	fields := map[string]any{}
	if in.Title != nil {
		fields["title"] = validation.SanitizeOptional(in.Title)
	}
	if in.Body != nil {
		body := validation.SanitizeText(*in.Body)
		if len([]rune(body)) < 10 {
			return nil, models.NewValidationError("Post body is too short once markup is removed")
		}
		fields["body"] = body
	}
	category := post.Category
	if in.Category != nil {
		category = *in.Category
		fields["category"] = category
	}
	if in.PriceCents != nil {
		fields["price_cents"] = *in.PriceCents
	}
	if in.IsFree != nil {
		fields["is_free"] = *in.IsFree
	}

	target := post.Status
	if in.Status != nil {
		target = *in.Status
	}
	if target == models.PostSold && !category.IsMarketplace() {
		return nil, models.NewValidationError("only marketplace posts can be marked as sold")
	}

	if target != post.Status {
		if err := models.CanTransitionPost(post.Status, target, models.ActorAuthor, category); err != nil {
			return nil, err
		}
		fields["sold_at"] = s.soldAt(target)
		err = s.repos.Posts.TransitionStatus(ctx, id, post.Status, target, fields)
	} else if len(fields) > 0 {
		err = s.repos.Posts.UpdateFields(ctx, id, fields)
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id, target != post.Status)
	if target == models.PostSold && post.Status != models.PostSold {
		s.notify.PostSold(ctx, post)
	}
	return s.repos.Posts.GetByID(ctx, id)
}

func (s *PostService) soldAt(status models.PostStatus) *time.Time {
	if status != models.PostSold {
		return nil
	}
	now := s.now().UTC()
	return &now
}

// ToggleSold flips a marketplace post between active and sold.
func (s *PostService) ToggleSold(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Post, error) {
	post, err := s.loadLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, models.NewAuthorizationError("You can only change your own posts")
	}

	target := models.PostSold
	if post.Status == models.PostSold {
		target = models.PostActive
	}
	if err := models.CanTransitionPost(post.Status, target, models.ActorAuthor, post.Category); err != nil {
		return nil, err
	}
	if err := s.repos.Posts.TransitionStatus(ctx, id, post.Status, target, map[string]any{"sold_at": s.soldAt(target)}); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id, true)
	if target == models.PostSold {
		s.notify.PostSold(ctx, post)
	}
	return s.repos.Posts.GetByID(ctx, id)
}

// Delete soft-deletes a post. Authors delete their own posts; moderators may
// delete anyone's, which is audited in the same transaction.
func (s *PostService) Delete(ctx context.Context, actor *models.User, id uuid.UUID, reason string) error {
	post, err := s.loadLive(ctx, id)
	if err != nil {
		return err
	}

	isAuthor := post.AuthorID == actor.ID
	if !isAuthor && !actor.IsModerator() {
		return models.NewAuthorizationError("You can only delete your own posts")
	}
	kind := models.ActorAuthor
	if !isAuthor {
		kind = models.ActorModerator
	}
	if err := models.CanTransitionPost(post.Status, models.PostDeleted, kind, post.Category); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repos.Posts.WithTx(tx).TransitionStatus(ctx, id, post.Status, models.PostDeleted, nil); err != nil {
			return err
		}
		if isAuthor {
			return nil
		}
		return appendAudit(ctx, s.repos.AuditLogs.WithTx(tx), actor, models.AuditDeletePost,
			models.TargetPost, id, optionalReason(reason), map[string]any{"previousStatus": string(post.Status)})
	})
	if err != nil {
		return err
	}

	if !isAuthor {
		observability.ModerationActions.WithLabelValues(string(models.AuditDeletePost)).Inc()
	}
	s.invalidate(ctx, id, true)
	return nil
}

// ListByAuthor pages through a user's visible posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uuid.UUID, cursor string, limit int, viewer *models.User) (CursorPage[*models.Post], error) {
	c, err := repository.DecodeCursor(cursor)
	if err != nil {
		return CursorPage[*models.Post]{}, err
	}
	if _, err := s.repos.Users.GetByID(ctx, authorID); err != nil {
		return CursorPage[*models.Post]{}, err
	}
	page, err := s.repos.Posts.ListByAuthor(ctx, authorID, c, limit)
	if err != nil {
		return CursorPage[*models.Post]{}, err
	}
	if err := s.fillSaved(ctx, viewer, page.Items); err != nil {
		return CursorPage[*models.Post]{}, err
	}
	return cursorPage(page), nil
}

// Search matches title and body case-insensitively, newest first.
func (s *PostService) Search(ctx context.Context, in SearchInput, viewer *models.User) (CursorPage[*models.Post], error) {
	q := strings.TrimSpace(in.Query)
	if n := len([]rune(q)); n < 2 || n > 100 {
		return CursorPage[*models.Post]{}, models.NewFieldValidationError("Invalid search query",
			map[string][]string{"q": {"must be between 2 and 100 characters"}})
	}
	category, err := parseCategory(in.Category)
	if err != nil {
		return CursorPage[*models.Post]{}, err
	}
	c, err := repository.DecodeCursor(in.Cursor)
	if err != nil {
		return CursorPage[*models.Post]{}, err
	}

	query := repository.SearchQuery{Query: q, Category: category, Cursor: c, Limit: in.Limit}
	if in.Neighborhood != "" {
		n, err := s.repos.Neighborhoods.GetBySlug(ctx, in.Neighborhood)
		if err != nil {
			return CursorPage[*models.Post]{}, err
		}
		query.NeighborhoodID = &n.ID
	}

	page, err := s.repos.Posts.Search(ctx, query)
	if err != nil {
		return CursorPage[*models.Post]{}, err
	}
	if err := s.fillSaved(ctx, viewer, page.Items); err != nil {
		return CursorPage[*models.Post]{}, err
	}
	return cursorPage(page), nil
}

// Save bookmarks a visible post. Saving twice is a no-op.
func (s *PostService) Save(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.repos.Posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !post.IsVisible() {
		return models.NewNotFoundError("Post", postID)
	}
	return s.repos.SavedPosts.Save(ctx, userID, postID)
}

func (s *PostService) Unsave(ctx context.Context, userID, postID uuid.UUID) error {
	return s.repos.SavedPosts.Unsave(ctx, userID, postID)
}

// ListSaved returns the user's bookmarked posts, most recently saved first.
func (s *PostService) ListSaved(ctx context.Context, userID uuid.UUID, cursor string, limit int) (CursorPage[*models.Post], error) {
	c, err := repository.DecodeCursor(cursor)
	if err != nil {
		return CursorPage[*models.Post]{}, err
	}
	page, err := s.repos.SavedPosts.List(ctx, userID, c, limit)
	if err != nil {
		return CursorPage[*models.Post]{}, err
	}
	posts := make([]*models.Post, 0, len(page.Items))
	for _, saved := range page.Items {
		if saved.Post == nil {
			continue
		}
		saved.Post.IsSaved = true
		posts = append(posts, saved.Post)
	}
	return CursorPage[*models.Post]{Items: posts, Cursor: page.NextCursor, HasMore: page.HasMore}, nil
}
