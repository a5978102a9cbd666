package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"vecinu/internal/models"
	"vecinu/internal/observability"
	"vecinu/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	reportCreatedMessage   = "Report submitted, thank you"
	reportDuplicateMessage = "already reported"
)

// ReportService accepts user reports about posts, comments and users.
type ReportService struct {
	db    *gorm.DB
	repos *Repositories
}

func NewReportService(db *gorm.DB, repos *Repositories) *ReportService {
	return &ReportService{db: db, repos: repos}
}

type SubmitReportInput struct {
	TargetType models.ReportTargetType `json:"targetType" validate:"required,oneof=post comment user"`
	TargetID   uuid.UUID               `json:"targetId" validate:"required"`
	Reason     string                  `json:"reason" validate:"required,max=1000"`
	Details    *string                 `json:"details" validate:"omitempty,max=2000"`
}

// ReportOutcome is returned for new and duplicate submissions alike.
type ReportOutcome struct {
	Reported bool       `json:"reported"`
	ReportID *uuid.UUID `json:"reportId,omitempty"`
	Message  string     `json:"message"`
}

// Submit files a report. While the reporter already has a pending or reviewed
// report on the same target, the existing outcome is returned and nothing is written.
func (s *ReportService) Submit(ctx context.Context, reporterID uuid.UUID, in SubmitReportInput) (*ReportOutcome, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	reason := validation.SanitizeText(in.Reason)
	if !slices.Contains(models.ReportReasons, strings.ToLower(reason)) && len([]rune(reason)) < 5 {
		return nil, models.NewFieldValidationError("Invalid report reason", map[string][]string{
			"reason": {"pick a reason from the list or describe it in at least 5 characters"},
		})
	}
	if err := s.checkTarget(ctx, reporterID, in.TargetType, in.TargetID); err != nil {
		return nil, err
	}

	duplicate := false
	var report *models.Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reports := s.repos.Reports.WithTx(tx)
		existing, err := reports.FindActive(ctx, reporterID, in.TargetType, in.TargetID)
		if err != nil {
			return err
		}
		if existing != nil {
			duplicate = true
			return nil
		}
		report = &models.Report{
			ReporterID: reporterID,
			TargetType: in.TargetType,
			TargetID:   in.TargetID,
			Reason:     reason,
			Details:    validation.SanitizeOptional(in.Details),
		}
		return reports.Create(ctx, report)
	})
	// A concurrent submission can slip past the pre-check; the partial unique
	// index on active reports rejects it.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		duplicate, err = true, nil
	}
	if err != nil {
		return nil, err
	}

	if duplicate {
		observability.ReportsSubmitted.WithLabelValues(string(in.TargetType), "duplicate").Inc()
		return &ReportOutcome{Reported: true, Message: reportDuplicateMessage}, nil
	}
	observability.ReportsSubmitted.WithLabelValues(string(in.TargetType), "created").Inc()
	return &ReportOutcome{Reported: true, ReportID: &report.ID, Message: reportCreatedMessage}, nil
}

func (s *ReportService) checkTarget(ctx context.Context, reporterID uuid.UUID, targetType models.ReportTargetType, targetID uuid.UUID) error {
	switch targetType {
	case models.TargetPost:
		post, err := s.repos.Posts.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if post.Status == models.PostDeleted {
			return models.NewNotFoundError("Post", targetID)
		}
	case models.TargetComment:
		comment, err := s.repos.Comments.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if comment.Status == models.CommentDeleted {
			return models.NewNotFoundError("Comment", targetID)
		}
	case models.TargetUser:
		if targetID == reporterID {
			return models.NewValidationError("You cannot report yourself")
		}
		if _, err := s.repos.Users.GetByID(ctx, targetID); err != nil {
			return err
		}
	default:
		return models.NewValidationError("Unknown report target type")
	}
	return nil
}
