package repository

import (
	"context"

	"vecinu/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLogFilter narrows the audit log listing.
type AuditLogFilter struct {
	TargetType models.ReportTargetType
	TargetID   *uuid.UUID
	AdminID    *uuid.UUID
	Limit      int
	Offset     int
}

// AuditLogRepository appends and reads moderation audit entries. There is no
// update or delete: entries are append-only.
type AuditLogRepository interface {
	WithTx(tx *gorm.DB) AuditLogRepository
	Append(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, f AuditLogFilter) ([]*models.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository returns a GORM-backed AuditLogRepository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) WithTx(tx *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: tx}
}

func (r *auditLogRepository) Append(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) List(ctx context.Context, f AuditLogFilter) ([]*models.AuditLog, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.TargetType != "" {
			db = db.Where("target_type = ?", f.TargetType)
		}
		if f.TargetID != nil {
			db = db.Where("target_id = ?", *f.TargetID)
		}
		if f.AdminID != nil {
			db = db.Where("admin_id = ?", *f.AdminID)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.AuditLog{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*models.AuditLog
	err := r.db.WithContext(ctx).Scopes(filter).
		Preload("Admin").
		Order("created_at DESC").Order("id DESC").
		Limit(f.Limit).Offset(f.Offset).
		Find(&entries).Error
	return entries, total, err
}
