package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditAction tags a moderation action.
type AuditAction string

const (
	AuditHidePost      AuditAction = "hide_post"
	AuditUnhidePost    AuditAction = "unhide_post"
	AuditDeletePost    AuditAction = "delete_post"
	AuditHideComment   AuditAction = "hide_comment"
	AuditUnhideComment AuditAction = "unhide_comment"
	AuditDeleteComment AuditAction = "delete_comment"
	AuditBanUser       AuditAction = "ban_user"
	AuditUnbanUser     AuditAction = "unban_user"
	AuditResolveReport AuditAction = "resolve_report"
	AuditDismissReport AuditAction = "dismiss_report"
	AuditChangeRole    AuditAction = "change_role"
)

// AuditTargetReport is the audit target type for report resolutions.
const AuditTargetReport ReportTargetType = "report"

// ErrAuditLogImmutable is returned when code attempts to modify an audit row.
var ErrAuditLogImmutable = errors.New("audit log entries are append-only")

// AuditLog is an append-only record of a moderation action.
type AuditLog struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AdminID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"adminId"`
	Admin      *User            `gorm:"foreignKey:AdminID" json:"-"`
	Action     AuditAction      `gorm:"size:40;not null;index" json:"action"`
	TargetType ReportTargetType `gorm:"size:20;not null;index:idx_audit_target,priority:1" json:"targetType"`
	TargetID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_audit_target,priority:2" json:"targetId"`
	Reason     *string          `json:"reason"`
	Metadata   map[string]any   `gorm:"serializer:json;type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time        `gorm:"index" json:"createdAt"`

	AdminView Author `gorm:"-" json:"admin"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *AuditLog) BeforeUpdate(*gorm.DB) error {
	return ErrAuditLogImmutable
}

func (a *AuditLog) BeforeDelete(*gorm.DB) error {
	return ErrAuditLogImmutable
}

func (a *AuditLog) AfterFind(*gorm.DB) error {
	if a.Admin != nil {
		a.AdminView = AuthorOf(a.Admin)
	}
	return nil
}
