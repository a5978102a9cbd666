package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportTargetType names the kind of entity a report points at.
type ReportTargetType string

const (
	TargetPost    ReportTargetType = "post"
	TargetComment ReportTargetType = "comment"
	TargetUser    ReportTargetType = "user"
)

func (t ReportTargetType) Valid() bool {
	return t == TargetPost || t == TargetComment || t == TargetUser
}

// ReportStatus tracks a report through review. reviewed and dismissed are final.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportDismissed ReportStatus = "dismissed"
)

// IsActive reports whether a report still blocks duplicate submissions.
func (s ReportStatus) IsActive() bool {
	return s == ReportPending || s == ReportReviewed
}

// Well-known reasons offered by clients. Free text is also accepted.
var ReportReasons = []string{"spam", "harassment", "scam", "inappropriate", "dangerous", "other"}

// Action tags recorded on resolved reports.
const (
	ActionTakenReviewed      = "reviewed"
	ActionTakenContentHidden = "content_hidden"
	ActionTakenUserBanned    = "user_banned"
	ActionTakenDismissed     = "dismissed"
)

// Report is a user complaint about a post, comment or user.
// idx_reports_active keeps one pending/reviewed report per reporter and target.
type Report struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_reports_active,priority:1,where:status <> 'dismissed'" json:"reporterId"`
	Reporter    *User            `gorm:"foreignKey:ReporterID" json:"-"`
	TargetType  ReportTargetType `gorm:"size:20;not null;uniqueIndex:idx_reports_active,priority:2;index:idx_reports_target,priority:1" json:"targetType"`
	TargetID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_reports_active,priority:3;index:idx_reports_target,priority:2" json:"targetId"`
	Reason      string           `gorm:"size:1000;not null" json:"reason"`
	Details     *string          `gorm:"size:2000" json:"details"`
	Status      ReportStatus     `gorm:"size:20;not null;default:pending;index" json:"status"`
	ActionTaken *string          `gorm:"size:50" json:"actionTaken"`
	ReviewedBy  *uuid.UUID       `gorm:"type:uuid" json:"reviewedBy"`
	ReviewedAt  *time.Time       `json:"reviewedAt"`
	CreatedAt   time.Time        `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`

	ReporterView Author `gorm:"-" json:"reporter"`
}

func (r *Report) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = ReportPending
	}
	return nil
}

func (r *Report) AfterFind(*gorm.DB) error {
	if r.Reporter != nil {
		r.ReporterView = AuthorOf(r.Reporter)
	}
	return nil
}
