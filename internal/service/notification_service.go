package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/notifications"
	"vecinu/internal/repository"

	"github.com/google/uuid"
)

// NotificationService creates in-app notifications. Creation triggered by
// content events runs through the dispatcher so it never fails or slows the
// request that caused it.
type NotificationService struct {
	repo       repository.NotificationRepository
	saved      repository.SavedPostRepository
	dispatcher *notifications.Dispatcher
	notifier   *notifications.Notifier
	now        func() time.Time
}

// NewNotificationService wires the service. A nil dispatcher runs jobs inline;
// a nil notifier skips realtime fan-out.
func NewNotificationService(repos *Repositories, dispatcher *notifications.Dispatcher, notifier *notifications.Notifier) *NotificationService {
	return &NotificationService{
		repo:       repos.Notifications,
		saved:      repos.SavedPosts,
		dispatcher: dispatcher,
		notifier:   notifier,
		now:        time.Now,
	}
}

func (s *NotificationService) dispatch(ctx context.Context, job notifications.Job) {
	if s.dispatcher != nil {
		s.dispatcher.Enqueue(ctx, job)
		return
	}
	if err := job.Run(ctx); err != nil {
		middleware.Logger.ErrorContext(ctx, "notification job failed",
			slog.String("job", job.Name), slog.String("error", err.Error()))
	}
}

func (s *NotificationService) deliver(ctx context.Context, n *models.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	if err := s.notifier.PublishUser(ctx, n.UserID, n); err != nil {
		middleware.Logger.WarnContext(ctx, "realtime notification publish failed",
			slog.String("user_id", n.UserID.String()), slog.String("error", err.Error()))
	}
	return nil
}

// CommentCreated notifies the parent comment's author for a reply, otherwise
// the post's author. Nobody is notified about their own activity.
func (s *NotificationService) CommentCreated(ctx context.Context, post *models.Post, comment *models.Comment, parent *models.Comment, commenter *models.User) {
	n := &models.Notification{
		Data: map[string]any{
			"postId":    post.ID.String(),
			"commentId": comment.ID.String(),
			"actorId":   commenter.ID.String(),
		},
	}
	if parent != nil {
		n.UserID = parent.AuthorID
		n.Type = models.NotificationCommentReply
		n.Title = commenter.Name() + " a răspuns la comentariul tău"
	} else {
		n.UserID = post.AuthorID
		n.Type = models.NotificationNewComment
		n.Title = commenter.Name() + " a comentat la postarea ta"
		n.Body = post.Title
	}
	if n.UserID == commenter.ID {
		return
	}

	s.dispatch(ctx, notifications.Job{
		Name: string(n.Type),
		Run:  func(ctx context.Context) error { return s.deliver(ctx, n) },
	})
}

// PostSold notifies every user who saved post, except its author.
func (s *NotificationService) PostSold(ctx context.Context, post *models.Post) {
	postID, authorID := post.ID, post.AuthorID
	title := post.Title

	s.dispatch(ctx, notifications.Job{
		Name: string(models.NotificationPostSold),
		Run: func(ctx context.Context) error {
			savers, err := s.saved.SaverIDs(ctx, postID)
			if err != nil {
				return fmt.Errorf("load savers: %w", err)
			}
			for _, userID := range savers {
				if userID == authorID {
					continue
				}
				err := s.deliver(ctx, &models.Notification{
					UserID: userID,
					Type:   models.NotificationPostSold,
					Title:  "Un anunț salvat a fost marcat ca vândut",
					Body:   title,
					Data:   map[string]any{"postId": postID.String()},
				})
				if err != nil {
					return err
				}
			}
			return nil
		},
	})
}

// List returns the user's notifications, newest first, and the unread count.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, cursor string, limit int) (CursorPage[*models.Notification], int64, error) {
	c, err := repository.DecodeCursor(cursor)
	if err != nil {
		return CursorPage[*models.Notification]{}, 0, err
	}
	page, err := s.repo.List(ctx, userID, unreadOnly, c, limit)
	if err != nil {
		return CursorPage[*models.Notification]{}, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return CursorPage[*models.Notification]{}, 0, err
	}
	return cursorPage(page), unread, nil
}

// MarkRead marks one of the user's notifications as read. Marking an already
// read notification is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id, s.now().UTC())
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now().UTC())
}
