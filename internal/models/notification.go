package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType identifies the event that produced a notification.
type NotificationType string

const (
	NotificationNewComment   NotificationType = "NEW_COMMENT"
	NotificationCommentReply NotificationType = "COMMENT_REPLY"
	NotificationPostSold     NotificationType = "POST_SOLD"
)

// Notification is an in-app message for a single user. IsRead only moves
// from false to true.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey;index:idx_notifications_inbox,priority:3" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_inbox,priority:1" json:"userId"`
	Type      NotificationType `gorm:"size:40;not null" json:"type"`
	Title     string           `gorm:"size:200;not null" json:"title"`
	Body      *string          `json:"body"`
	Data      map[string]any   `gorm:"serializer:json;type:jsonb" json:"data,omitempty"`
	IsRead    bool             `gorm:"not null;default:false;index" json:"isRead"`
	ReadAt    *time.Time       `json:"readAt"`
	CreatedAt time.Time        `gorm:"index:idx_notifications_inbox,priority:2" json:"createdAt"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
