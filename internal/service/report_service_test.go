package service

import (
	"context"
	"testing"

	"vecinu/internal/models"
	"vecinu/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) reportCount(t *testing.T, targetID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Report{}).Where("target_id = ?", targetID).Count(&n).Error)
	return n
}

func TestReportService_DuplicateReturnsExistingOutcome(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	centru := testutil.CreateNeighborhood(t, env.db, "centru")
	ana := testutil.CreateUser(t, env.db, "Ana Pop", testutil.InNeighborhood(centru))
	reporter := testutil.CreateUser(t, env.db, "Mihai Ionescu", testutil.InNeighborhood(centru))
	post := testutil.CreatePost(t, env.db, ana, centru, models.CategorySell)

	_, err := env.svc.Reports.Submit(ctx, reporter.ID, SubmitReportInput{TargetType: models.TargetPost, TargetID: post.ID, Reason: "rău"})
	requireCode(t, err, models.CodeValidation)

	in := SubmitReportInput{TargetType: models.TargetPost, TargetID: post.ID, Reason: "spam"}
	first, err := env.svc.Reports.Submit(ctx, reporter.ID, in)
	require.NoError(t, err)
	assert.True(t, first.Reported)
	require.NotNil(t, first.ReportID)

	second, err := env.svc.Reports.Submit(ctx, reporter.ID, in)
	require.NoError(t, err)
	assert.Equal(t, &ReportOutcome{Reported: true, Message: "already reported"}, second)
	assert.Equal(t, int64(1), env.reportCount(t, post.ID))

	// A reviewed report still counts as active.
	mod := testutil.CreateUser(t, env.db, "Moderator", testutil.WithRole(models.RoleModerator))
	_, err = env.svc.Moderation.ResolveReport(ctx, mod, *first.ReportID, ResolveReportInput{Action: "resolve"})
	require.NoError(t, err)
	again, err := env.svc.Reports.Submit(ctx, reporter.ID, in)
	require.NoError(t, err)
	assert.Nil(t, again.ReportID)
	assert.Equal(t, int64(1), env.reportCount(t, post.ID))

	// Another reporter files their own report.
	_, err = env.svc.Reports.Submit(ctx, ana.ID, SubmitReportInput{TargetType: models.TargetPost, TargetID: post.ID, Reason: "preț înșelător"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), env.reportCount(t, post.ID))
}

func TestReportService_DismissedAllowsNewReport(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	centru := testutil.CreateNeighborhood(t, env.db, "centru")
	ana := testutil.CreateUser(t, env.db, "Ana Pop", testutil.InNeighborhood(centru))
	reporter := testutil.CreateUser(t, env.db, "Mihai Ionescu", testutil.InNeighborhood(centru))
	mod := testutil.CreateUser(t, env.db, "Moderator", testutil.WithRole(models.RoleModerator))

	in := SubmitReportInput{TargetType: models.TargetUser, TargetID: ana.ID, Reason: "hărțuire în comentarii"}
	first, err := env.svc.Reports.Submit(ctx, reporter.ID, in)
	require.NoError(t, err)

	_, err = env.svc.Moderation.ResolveReport(ctx, mod, *first.ReportID, ResolveReportInput{Action: "dismiss"})
	require.NoError(t, err)

	second, err := env.svc.Reports.Submit(ctx, reporter.ID, in)
	require.NoError(t, err)
	require.NotNil(t, second.ReportID)
	assert.NotEqual(t, *first.ReportID, *second.ReportID)
	assert.Equal(t, int64(2), env.reportCount(t, ana.ID))
}

func TestReportService_TargetMustExist(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	centru := testutil.CreateNeighborhood(t, env.db, "centru")
	ana := testutil.CreateUser(t, env.db, "Ana Pop", testutil.InNeighborhood(centru))
	deleted := testutil.CreatePost(t, env.db, ana, centru, models.CategoryAlert, testutil.WithStatus(models.PostDeleted))

	tests := []struct {
		name string
		in   SubmitReportInput
		code string
	}{
		{"missing post", SubmitReportInput{TargetType: models.TargetPost, TargetID: uuid.New(), Reason: "spam repetat"}, models.CodeNotFound},
		{"deleted post", SubmitReportInput{TargetType: models.TargetPost, TargetID: deleted.ID, Reason: "spam repetat"}, models.CodeNotFound},
		{"missing comment", SubmitReportInput{TargetType: models.TargetComment, TargetID: uuid.New(), Reason: "spam repetat"}, models.CodeNotFound},
		{"self", SubmitReportInput{TargetType: models.TargetUser, TargetID: ana.ID, Reason: "spam repetat"}, models.CodeValidation},
		{"unknown type", SubmitReportInput{TargetType: "neighborhood", TargetID: uuid.New(), Reason: "spam repetat"}, models.CodeValidation},
	}
	for _, tt := range tests {
		_, err := env.svc.Reports.Submit(ctx, ana.ID, tt.in)
		requireCode(t, err, tt.code)
	}

	var n int64
	require.NoError(t, env.db.Model(&models.Report{}).Count(&n).Error)
	assert.Zero(t, n)
}
