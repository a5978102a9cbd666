package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vecinu/internal/cache"
	"vecinu/internal/models"
	"vecinu/internal/observability"
	"vecinu/internal/repository"
	"vecinu/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// ModerationService backs the admin surface. Every state-changing action
// writes exactly one audit row in the same transaction as the change.
type ModerationService struct {
	db    *gorm.DB
	repos *Repositories
	cache *cache.Store
	now   func() time.Time
}

func NewModerationService(db *gorm.DB, repos *Repositories, store *cache.Store) *ModerationService {
	return &ModerationService{db: db, repos: repos, cache: store, now: time.Now}
}

const adminPageSize = 20

type Stats struct {
	PendingReports int64 `json:"pendingReports"`
	TotalReports   int64 `json:"totalReports"`
	BannedUsers    int64 `json:"bannedUsers"`
	HiddenPosts    int64 `json:"hiddenPosts"`
}

func (s *ModerationService) Stats(ctx context.Context) (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.PendingReports, err = s.repos.Reports.CountByStatus(ctx, models.ReportPending); err != nil {
		return nil, err
	}
	if st.TotalReports, err = s.repos.Reports.Count(ctx); err != nil {
		return nil, err
	}
	if st.BannedUsers, err = s.repos.Users.CountBanned(ctx); err != nil {
		return nil, err
	}
	if st.HiddenPosts, err = s.repos.Posts.CountByStatus(ctx, models.PostHidden); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListReports returns the moderation queue, newest first. An empty status
// lists every report.
func (s *ModerationService) ListReports(ctx context.Context, status string, page int) (OffsetPage[*models.Report], error) {
	st := models.ReportStatus(strings.ToLower(status))
	switch st {
	case "", models.ReportPending, models.ReportReviewed, models.ReportDismissed:
	default:
		return OffsetPage[*models.Report]{}, models.NewValidationError("Unknown report status")
	}
	page = pageNumber(page)
	reports, total, err := s.repos.Reports.List(ctx, repository.ReportFilter{
		Status: st,
		Limit:  adminPageSize,
		Offset: repository.Offset(page, adminPageSize),
	})
	if err != nil {
		return OffsetPage[*models.Report]{}, err
	}
	return OffsetPage[*models.Report]{Items: reports, Total: total, Page: page, Limit: adminPageSize}, nil
}

// ReportDetail is a report together with the current state of what it targets.
// Target is nil when the target no longer exists.
type ReportDetail struct {
	*models.Report
	Target any `json:"target"`
}

func (s *ModerationService) GetReport(ctx context.Context, id uuid.UUID) (*ReportDetail, error) {
	report, err := s.repos.Reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &ReportDetail{Report: report}

	var target any
	switch report.TargetType {
	case models.TargetPost:
		target, err = s.repos.Posts.GetByID(ctx, report.TargetID)
	case models.TargetComment:
		target, err = s.repos.Comments.GetByID(ctx, report.TargetID)
	case models.TargetUser:
		target, err = s.repos.Users.GetByID(ctx, report.TargetID)
	}
	switch {
	case err == nil:
		detail.Target = target
	case !models.IsCode(err, models.CodeNotFound):
		return nil, err
	}
	return detail, nil
}

type ResolveReportInput struct {
	Action      string  `json:"action" validate:"required,oneof=resolve dismiss"`
	ActionTaken *string `json:"actionTaken" validate:"omitempty,max=50"`
	Reason      string  `json:"reason" validate:"max=1000"`
}

// ResolveReport moves a pending report to reviewed or dismissed. Resolving
// without an explicit actionTaken records "reviewed".
func (s *ModerationService) ResolveReport(ctx context.Context, admin *models.User, id uuid.UUID, in ResolveReportInput) (_ *models.Report, err error) {
	ctx, span := observability.StartSpan(ctx, "ModerationService.ResolveReport", attribute.String("report_id", id.String()))
	defer span.End(&err)

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	res := repository.ReportResolution{ReviewedBy: admin.ID, ReviewedAt: s.now().UTC()}
	action := models.AuditResolveReport
	taken := models.ActionTakenReviewed
	if in.ActionTaken != nil && strings.TrimSpace(*in.ActionTaken) != "" {
		taken = strings.TrimSpace(*in.ActionTaken)
	}
	if in.Action == "dismiss" {
		action = models.AuditDismissReport
		res.Status = models.ReportDismissed
		taken = models.ActionTakenDismissed
	} else {
		res.Status = models.ReportReviewed
	}
	res.ActionTaken = &taken

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repos.Reports.WithTx(tx).Resolve(ctx, id, res); err != nil {
			return err
		}
		return appendAudit(ctx, s.repos.AuditLogs.WithTx(tx), admin, action, models.AuditTargetReport, id,
			optionalReason(in.Reason), map[string]any{"actionTaken": taken})
	})
	if err != nil {
		if models.IsCode(err, models.CodeConflict) {
			// Distinguish a missing report from one already handled.
			if _, getErr := s.repos.Reports.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
		}
		return nil, err
	}

	observability.ModerationActions.WithLabelValues(string(action)).Inc()
	return s.repos.Reports.GetByID(ctx, id)
}

// ListPosts lists non-deleted posts for moderators. filter is "hidden",
// "active" or empty for both.
func (s *ModerationService) ListPosts(ctx context.Context, filter, q string, page int) (OffsetPage[*models.Post], error) {
	var status models.PostStatus
	switch strings.ToLower(filter) {
	case "":
	case "hidden":
		status = models.PostHidden
	case "active":
		status = models.PostActive
	default:
		return OffsetPage[*models.Post]{}, models.NewValidationError("filter must be hidden or active")
	}
	page = pageNumber(page)
	posts, total, err := s.repos.Posts.AdminList(ctx, repository.AdminPostFilter{
		Status: status,
		Query:  strings.TrimSpace(q),
		Limit:  adminPageSize,
		Offset: repository.Offset(page, adminPageSize),
	})
	if err != nil {
		return OffsetPage[*models.Post]{}, err
	}
	return OffsetPage[*models.Post]{Items: posts, Total: total, Page: page, Limit: adminPageSize}, nil
}

type ModerateContentInput struct {
	Action string `json:"action" validate:"required,oneof=hide unhide"`
	Reason string `json:"reason" validate:"max=1000"`
}

// ModeratePost hides or unhides a post.
func (s *ModerationService) ModeratePost(ctx context.Context, admin *models.User, id uuid.UUID, in ModerateContentInput) (*models.Post, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	post, err := s.repos.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	to, action := models.PostHidden, models.AuditHidePost
	if in.Action == "unhide" {
		to, action = models.PostActive, models.AuditUnhidePost
	}
	if err := models.CanTransitionPost(post.Status, to, models.ActorModerator, post.Category); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repos.Posts.WithTx(tx).TransitionStatus(ctx, id, post.Status, to, nil); err != nil {
			return err
		}
		return appendAudit(ctx, s.repos.AuditLogs.WithTx(tx), admin, action, models.TargetPost, id,
			optionalReason(in.Reason), map[string]any{"from": string(post.Status), "to": string(to)})
	})
	if err != nil {
		return nil, err
	}

	observability.ModerationActions.WithLabelValues(string(action)).Inc()
	s.cache.InvalidatePost(ctx, id)
	s.cache.InvalidateFeed(ctx)
	return s.repos.Posts.GetByID(ctx, id)
}

// ModerateComment hides or unhides a comment.
func (s *ModerationService) ModerateComment(ctx context.Context, admin *models.User, id uuid.UUID, in ModerateContentInput) (*models.Comment, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	comment, err := s.repos.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	to, action := models.CommentHidden, models.AuditHideComment
	if in.Action == "unhide" {
		to, action = models.CommentActive, models.AuditUnhideComment
	}
	if err := models.CanTransitionComment(comment.Status, to, models.ActorModerator); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repos.Comments.WithTx(tx).TransitionStatus(ctx, id, comment.Status, to); err != nil {
			return err
		}
		return appendAudit(ctx, s.repos.AuditLogs.WithTx(tx), admin, action, models.TargetComment, id,
			optionalReason(in.Reason), map[string]any{"postId": comment.PostID.String()})
	})
	if err != nil {
		return nil, err
	}

	observability.ModerationActions.WithLabelValues(string(action)).Inc()
	s.cache.InvalidatePost(ctx, comment.PostID)
	return s.repos.Comments.GetByID(ctx, id)
}

// ListUsers searches users by name or e-mail. banned filters when non-nil.
func (s *ModerationService) ListUsers(ctx context.Context, q string, banned *bool, page int) (OffsetPage[models.User], error) {
	page = pageNumber(page)
	users, total, err := s.repos.Users.List(ctx, repository.UserFilter{
		Query:  strings.TrimSpace(q),
		Banned: banned,
		Limit:  adminPageSize,
		Offset: repository.Offset(page, adminPageSize),
	})
	if err != nil {
		return OffsetPage[models.User]{}, err
	}
	return OffsetPage[models.User]{Items: users, Total: total, Page: page, Limit: adminPageSize}, nil
}

type ModerateUserInput struct {
	Action string      `json:"action" validate:"required,oneof=ban unban role"`
	Reason string      `json:"reason" validate:"max=1000"`
	Role   models.Role `json:"role"`
}

// ModerateUser bans, unbans or changes the role of a user. Moderators cannot
// act on themselves and only admins may change roles.
func (s *ModerationService) ModerateUser(ctx context.Context, admin *models.User, id uuid.UUID, in ModerateUserInput) (_ *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "ModerationService.ModerateUser",
		attribute.String("user_id", id.String()), attribute.String("action", in.Action))
	defer span.End(&err)

	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	target, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		action   models.AuditAction
		fields   map[string]any
		metadata map[string]any
	)
	reason := strings.TrimSpace(in.Reason)

	switch in.Action {
	case "ban":
		if target.ID == admin.ID {
			return nil, models.NewValidationError("You cannot ban yourself")
		}
		if len([]rune(reason)) < 5 {
			return nil, models.NewFieldValidationError("A ban requires a reason", map[string][]string{
				"reason": {"must be at least 5 characters"},
			})
		}
		if target.IsBanned {
			return nil, models.NewConflictError("User is already banned")
		}
		action = models.AuditBanUser
		fields = map[string]any{
			"is_banned":     true,
			"banned_at":     s.now().UTC(),
			"banned_reason": reason,
			"banned_by":     admin.ID,
		}
	case "unban":
		if !target.IsBanned {
			return nil, models.NewConflictError("User is not banned")
		}
		action = models.AuditUnbanUser
		fields = map[string]any{
			"is_banned":     false,
			"banned_at":     nil,
			"banned_reason": nil,
			"banned_by":     nil,
		}
	case "role":
		if !admin.IsAdmin() {
			return nil, models.NewAuthorizationError("Only admins can change roles")
		}
		if target.ID == admin.ID {
			return nil, models.NewValidationError("You cannot change your own role")
		}
		if !in.Role.Valid() {
			return nil, models.NewFieldValidationError("Invalid role", map[string][]string{
				"role": {fmt.Sprintf("must be one of %s, %s, %s, %s", models.RoleUser, models.RoleModerator, models.RoleAdmin, models.RoleBusiness)},
			})
		}
		if in.Role == target.Role {
			return nil, models.NewConflictError(fmt.Sprintf("User already has role %s", in.Role))
		}
		action = models.AuditChangeRole
		fields = map[string]any{"role": in.Role}
		metadata = map[string]any{"from": string(target.Role), "to": string(in.Role)}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repos.Users.WithTx(tx).UpdateFields(ctx, id, fields); err != nil {
			return err
		}
		return appendAudit(ctx, s.repos.AuditLogs.WithTx(tx), admin, action, models.TargetUser, id,
			optionalReason(reason), metadata)
	})
	if err != nil {
		return nil, err
	}

	observability.ModerationActions.WithLabelValues(string(action)).Inc()
	return s.repos.Users.GetByID(ctx, id)
}

type AuditLogQuery struct {
	TargetType string
	TargetID   string
	Page       int
}

func (s *ModerationService) ListAuditLogs(ctx context.Context, q AuditLogQuery) (OffsetPage[*models.AuditLog], error) {
	page := pageNumber(q.Page)
	f := repository.AuditLogFilter{
		Limit:  adminPageSize,
		Offset: repository.Offset(page, adminPageSize),
	}
	if q.TargetType != "" {
		tt := models.ReportTargetType(strings.ToLower(q.TargetType))
		if !tt.Valid() && tt != models.AuditTargetReport {
			return OffsetPage[*models.AuditLog]{}, models.NewValidationError("Unknown target type")
		}
		f.TargetType = tt
	}
	if q.TargetID != "" {
		id, err := uuid.Parse(q.TargetID)
		if err != nil {
			return OffsetPage[*models.AuditLog]{}, models.NewValidationError("targetId must be a UUID")
		}
		f.TargetID = &id
	}
	logs, total, err := s.repos.AuditLogs.List(ctx, f)
	if err != nil {
		return OffsetPage[*models.AuditLog]{}, err
	}
	return OffsetPage[*models.AuditLog]{Items: logs, Total: total, Page: page, Limit: adminPageSize}, nil
}
