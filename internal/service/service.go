// Package service implements the application's use cases on top of the
// repositories: content lifecycle, comments, reports, moderation,
// notifications, accounts and images.
package service

import (
	"context"
	"strings"

	"vecinu/internal/cache"
	"vecinu/internal/identity"
	"vecinu/internal/models"
	"vecinu/internal/notifications"
	"vecinu/internal/repository"
	"vecinu/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repositories bundles the repositories bound to one database handle.
type Repositories struct {
	Users         repository.UserRepository
	Neighborhoods repository.NeighborhoodRepository
	Posts         repository.PostRepository
	Images        repository.PostImageRepository
	SavedPosts    repository.SavedPostRepository
	Comments      repository.CommentRepository
	Reports       repository.ReportRepository
	AuditLogs     repository.AuditLogRepository
	Notifications repository.NotificationRepository
}

// NewRepositories builds every repository on db.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         repository.NewUserRepository(db),
		Neighborhoods: repository.NewNeighborhoodRepository(db),
		Posts:         repository.NewPostRepository(db),
		Images:        repository.NewPostImageRepository(db),
		SavedPosts:    repository.NewSavedPostRepository(db),
		Comments:      repository.NewCommentRepository(db),
		Reports:       repository.NewReportRepository(db),
		AuditLogs:     repository.NewAuditLogRepository(db),
		Notifications: repository.NewNotificationRepository(db),
	}
}

// Services holds every service of the application.
type Services struct {
	Posts         *PostService
	Comments      *CommentService
	Reports       *ReportService
	Moderation    *ModerationService
	Notifications *NotificationService
	Users         *UserService
	Auth          *AuthService
	Images        *ImageService
}

// Deps are the collaborators the services are built from.
type Deps struct {
	DB            *gorm.DB
	Cache         *cache.Store
	Objects       storage.ObjectStore
	Provider      identity.Provider
	Authenticator *identity.Authenticator
	Dispatcher    *notifications.Dispatcher
	Notifier      *notifications.Notifier
	CacheTTLs     CacheTTLs
}

// New builds every service over one set of repositories.
func New(d Deps) *Services {
	repos := NewRepositories(d.DB)
	notify := NewNotificationService(repos, d.Dispatcher, d.Notifier)
	return &Services{
		Posts:         NewPostService(d.DB, repos, d.Cache, notify, d.CacheTTLs),
		Comments:      NewCommentService(d.DB, repos, d.Cache, notify),
		Reports:       NewReportService(d.DB, repos),
		Moderation:    NewModerationService(d.DB, repos, d.Cache),
		Notifications: notify,
		Users:         NewUserService(d.DB, repos),
		Auth:          NewAuthService(repos, d.Provider, d.Authenticator),
		Images:        NewImageService(repos, d.Objects, d.Cache),
	}
}

// CursorPage is a cursor page as returned to handlers.
type CursorPage[T any] struct {
	Items   []T
	Cursor  string
	HasMore bool
}

func cursorPage[T any](p repository.Page[T]) CursorPage[T] {
	return CursorPage[T]{Items: p.Items, Cursor: p.NextCursor, HasMore: p.HasMore}
}

// OffsetPage is a numbered page for admin listings.
type OffsetPage[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

func pageNumber(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// appendAudit records one moderation action with the given repository.
func appendAudit(ctx context.Context, logs repository.AuditLogRepository, admin *models.User, action models.AuditAction,
	targetType models.ReportTargetType, targetID uuid.UUID, reason *string, metadata map[string]any,
) error {
	return logs.Append(ctx, &models.AuditLog{
		AdminID:    admin.ID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
		Metadata:   metadata,
	})
}

// optionalReason trims reason and returns nil when it is blank.
func optionalReason(reason string) *string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil
	}
	return &reason
}

// loadActiveUser reloads the caller so ban state is never taken from a stale copy.
func loadActiveUser(ctx context.Context, users repository.UserRepository, id uuid.UUID) (*models.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewAuthenticationError("Account not found")
		}
		return nil, err
	}
	if user.IsBanned {
		return nil, models.NewAuthorizationError("Your account has been suspended")
	}
	return user, nil
}
