package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentStatus is the visibility state of a comment.
type CommentStatus string

const (
	CommentActive  CommentStatus = "active"
	CommentHidden  CommentStatus = "hidden"
	CommentDeleted CommentStatus = "deleted"
)

// CanTransitionComment validates a comment status change. Moderators toggle
// active/hidden; authors and moderators may delete. deleted is terminal.
func CanTransitionComment(from, to CommentStatus, actor Actor) error {
	if from == CommentDeleted {
		return NewValidationError("comment has been deleted")
	}
	if from == to {
		return NewValidationError(fmt.Sprintf("comment is already %s", to))
	}
	switch to {
	case CommentDeleted:
		return nil
	case CommentHidden, CommentActive:
		if actor == ActorModerator {
			return nil
		}
	}
	return NewValidationError(fmt.Sprintf("cannot change comment status from %s to %s as %s", from, to, actor))
}

// Comment is a response to a post. ParentID, when set, points at a
// top-level comment of the same post.
type Comment struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey;index:idx_comments_thread,priority:4" json:"id"`
	PostID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_comments_thread,priority:1" json:"postId"`
	AuthorID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"authorId"`
	Author    *User         `gorm:"foreignKey:AuthorID" json:"-"`
	ParentID  *uuid.UUID    `gorm:"type:uuid;index" json:"parentId"`
	Body      string        `gorm:"type:text;not null" json:"body"`
	Status    CommentStatus `gorm:"size:20;not null;default:active;index:idx_comments_thread,priority:2" json:"status"`
	IsEdited  bool          `gorm:"not null;default:false" json:"isEdited"`
	CreatedAt time.Time     `gorm:"index:idx_comments_thread,priority:3" json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`

	AuthorView Author `gorm:"-" json:"author"`
	// ReplyCount is computed for top-level comments.
	ReplyCount int `gorm:"-" json:"replyCount"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CommentActive
	}
	return nil
}

func (c *Comment) AfterFind(*gorm.DB) error {
	if c.Author != nil {
		c.AuthorView = AuthorOf(c.Author)
	}
	return nil
}
