package repository

import (
	"context"
	"errors"
	"time"

	"vecinu/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportFilter narrows the moderation queue.
type ReportFilter struct {
	Status models.ReportStatus
	Limit  int
	Offset int
}

// ReportResolution is the final state written by a moderator.
type ReportResolution struct {
	Status      models.ReportStatus
	ActionTaken *string
	ReviewedBy  uuid.UUID
	ReviewedAt  time.Time
}

// ReportRepository defines persistence operations for reports.
type ReportRepository interface {
	WithTx(tx *gorm.DB) ReportRepository
	Create(ctx context.Context, report *models.Report) error
	FindActive(ctx context.Context, reporterID uuid.UUID, targetType models.ReportTargetType, targetID uuid.UUID) (*models.Report, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	List(ctx context.Context, f ReportFilter) ([]*models.Report, int64, error)
	Resolve(ctx context.Context, id uuid.UUID, res ReportResolution) error
	CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository returns a GORM-backed ReportRepository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) WithTx(tx *gorm.DB) ReportRepository {
	return &reportRepository{db: tx}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// FindActive returns the reporter's pending or reviewed report on the target,
// or nil when there is none.
func (r *reportRepository) FindActive(ctx context.Context, reporterID uuid.UUID, targetType models.ReportTargetType, targetID uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).
		Where("reporter_id = ? AND target_type = ? AND target_id = ?", reporterID, targetType, targetID).
		Where("status <> ?", models.ReportDismissed).
		Order("created_at DESC").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).Preload("Reporter").First(&report, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Report", id)
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, f ReportFilter) ([]*models.Report, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Report{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []*models.Report
	err := r.db.WithContext(ctx).Scopes(filter).
		Preload("Reporter").
		Order("created_at DESC").Order("id DESC").
		Limit(f.Limit).Offset(f.Offset).
		Find(&reports).Error
	return reports, total, err
}

// Resolve moves a pending report into its final state. A report that is no
// longer pending yields a Conflict error.
func (r *reportRepository) Resolve(ctx context.Context, id uuid.UUID, res ReportResolution) error {
	result := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportPending).
		Updates(map[string]any{
			"status":       res.Status,
			"action_taken": res.ActionTaken,
			"reviewed_by":  res.ReviewedBy,
			"reviewed_at":  res.ReviewedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewConflictError("report has already been handled")
	}
	return nil
}

func (r *reportRepository) CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *reportRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).Count(&n).Error
	return n, err
}
