package service

import (
	"context"

	"vecinu/internal/cache"
	"vecinu/internal/models"
	"vecinu/internal/observability"
	"vecinu/internal/repository"
	"vecinu/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type CommentService struct {
	db     *gorm.DB
	repos  *Repositories
	cache  *cache.Store
	notify *NotificationService
}

func NewCommentService(db *gorm.DB, repos *Repositories, store *cache.Store, notify *NotificationService) *CommentService {
	return &CommentService{db: db, repos: repos, cache: store, notify: notify}
}

type CreateCommentInput struct {
	PostID   uuid.UUID  `json:"postId" validate:"required"`
	ParentID *uuid.UUID `json:"parentId"`
	Body     string     `json:"body" validate:"required,min=1,max=2000"`
}

type UpdateCommentInput struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

func (s *CommentService) visiblePost(ctx context.Context, postID uuid.UUID, viewer *models.User) (*models.Post, error) {
	post, err := s.repos.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !canView(post, viewer) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

// List returns active top-level comments of a post, oldest first.
func (s *CommentService) List(ctx context.Context, postID uuid.UUID, cursor string, limit int, viewer *models.User) (CursorPage[*models.Comment], error) {
	c, err := repository.DecodeCursor(cursor)
	if err != nil {
		return CursorPage[*models.Comment]{}, err
	}
	if _, err := s.visiblePost(ctx, postID, viewer); err != nil {
		return CursorPage[*models.Comment]{}, err
	}
	page, err := s.repos.Comments.ListTopLevel(ctx, postID, c, limit)
	if err != nil {
		return CursorPage[*models.Comment]{}, err
	}
	return cursorPage(page), nil
}

// Replies returns the active replies of a top-level comment, oldest first.
func (s *CommentService) Replies(ctx context.Context, commentID uuid.UUID) ([]*models.Comment, error) {
	parent, err := s.repos.Comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if parent.Status == models.CommentDeleted {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return s.repos.Comments.ListReplies(ctx, commentID)
}

// Create adds a comment and bumps the post's comment count in one
// transaction, then schedules the notification.
func (s *CommentService) Create(ctx context.Context, authorID uuid.UUID, in CreateCommentInput) (_ *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "CommentService.Create", attribute.String("post_id", in.PostID.String()))
	defer span.End(&err)

	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	author, err := loadActiveUser(ctx, s.repos.Users, authorID)
	if err != nil {
		return nil, err
	}
	body := validation.SanitizeText(in.Body)
	if body == "" {
		return nil, models.NewValidationError("Comment is empty once markup is removed")
	}

	var (
		post    *models.Post
		parent  *models.Comment
		comment *models.Comment
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := s.repos.Posts.WithTx(tx)
		comments := s.repos.Comments.WithTx(tx)

		p, err := posts.GetByID(ctx, in.PostID)
		if err != nil {
			return err
		}
		if !p.IsVisible() {
			return models.NewNotFoundError("Post", in.PostID)
		}
		post = p

		if in.ParentID != nil {
			parent, err = comments.GetByID(ctx, *in.ParentID)
			if err != nil {
				return err
			}
			switch {
			case parent.Status != models.CommentActive:
				return models.NewNotFoundError("Comment", *in.ParentID)
			case parent.PostID != post.ID:
				return models.NewValidationError("Parent comment belongs to another post")
			case parent.ParentID != nil:
				return models.NewValidationError("Replies can only be added to top-level comments")
			}
		}

		comment = &models.Comment{
			PostID:   post.ID,
			AuthorID: author.ID,
			ParentID: in.ParentID,
			Body:     body,
		}
		if err := comments.Create(ctx, comment); err != nil {
			return err
		}
		return posts.AdjustCommentCount(ctx, post.ID, 1)
	})
	if err != nil {
		return nil, err
	}

	observability.CommentsCreated.Inc()
	s.cache.InvalidatePost(ctx, post.ID)
	s.notify.CommentCreated(ctx, post, comment, parent, author)

	comment.Author = author
	comment.AuthorView = models.AuthorOf(author)
	return comment, nil
}

// Update replaces the body of the author's own comment.
func (s *CommentService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in UpdateCommentInput) (*models.Comment, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	comment, err := s.repos.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.Status == models.CommentDeleted {
		return nil, models.NewNotFoundError("Comment", id)
	}
	if comment.AuthorID != actor.ID {
		return nil, models.NewAuthorizationError("You can only edit your own comments")
	}
	body := validation.SanitizeText(in.Body)
	if body == "" {
		return nil, models.NewValidationError("Comment is empty once markup is removed")
	}
	if err := s.repos.Comments.UpdateBody(ctx, id, body); err != nil {
		return nil, err
	}
	return s.repos.Comments.GetByID(ctx, id)
}

// Delete soft-deletes a comment and decrements the post's comment count in
// the same transaction. Moderator deletions of other users' comments are audited.
func (s *CommentService) Delete(ctx context.Context, actor *models.User, id uuid.UUID, reason string) error {
	comment, err := s.repos.Comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.Status == models.CommentDeleted {
		return models.NewNotFoundError("Comment", id)
	}

	isAuthor := comment.AuthorID == actor.ID
	if !isAuthor && !actor.IsModerator() {
		return models.NewAuthorizationError("You can only delete your own comments")
	}
	kind := models.ActorAuthor
	if !isAuthor {
		kind = models.ActorModerator
	}
	if err := models.CanTransitionComment(comment.Status, models.CommentDeleted, kind); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repos.Comments.WithTx(tx).TransitionStatus(ctx, id, comment.Status, models.CommentDeleted); err != nil {
			return err
		}
		if err := s.repos.Posts.WithTx(tx).AdjustCommentCount(ctx, comment.PostID, -1); err != nil {
			return err
		}
		if isAuthor {
			return nil
		}
		return appendAudit(ctx, s.repos.AuditLogs.WithTx(tx), actor, models.AuditDeleteComment,
			models.TargetComment, id, optionalReason(reason), map[string]any{"postId": comment.PostID.String()})
	})
	if err != nil {
		return err
	}

	if !isAuthor {
		observability.ModerationActions.WithLabelValues(string(models.AuditDeleteComment)).Inc()
	}
	s.cache.InvalidatePost(ctx, comment.PostID)
	return nil
}
