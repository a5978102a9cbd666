package repository

import (
	"context"
	"time"

	"vecinu/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository stores per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, cursor *Cursor, limit int) (Page[*models.Notification], error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a GORM-backed NotificationRepository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// List returns the user's notifications, newest first.
func (r *notificationRepository) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, cursor *Cursor, limit int) (Page[*models.Notification], error) {
	limit = ClampLimit(limit)
	db := r.db.WithContext(ctx).Where("notifications.user_id = ?", userID)
	if unreadOnly {
		db = db.Where("notifications.is_read = ?", false)
	}
	db = applyCursor(db, "notifications", cursor, true)

	var rows []*models.Notification
	err := db.Order("notifications.created_at DESC").Order("notifications.id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return Page[*models.Notification]{}, err
	}
	return pageOf(rows, limit, func(n *models.Notification) string {
		return Cursor{CreatedAt: n.CreatedAt, ID: n.ID}.Encode()
	}), nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// MarkRead flags one notification as read. Only the owner can do so; an
// already-read notification keeps its original read timestamp.
func (r *notificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	var owned int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&owned).Error; err != nil {
		return err
	}
	if owned == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]any{"is_read": true, "read_at": at}).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}
