package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"vecinu/internal/models"
	"vecinu/internal/service"
	"vecinu/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireModerator(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	user := testutil.CreateUser(t, ts.db, "Regular")

	paths := []string{
		"/api/admin/stats",
		"/api/admin/reports",
		"/api/admin/posts",
		"/api/admin/users",
		"/api/admin/audit-logs",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, path, nil, "").StatusCode)

			resp := ts.do(http.MethodGet, path, nil, ts.tokenFor(user))
			requireStatus(t, resp, http.StatusForbidden)
			assert.Equal(t, models.CodeAuthorization, decodeError(t, resp).Code)
		})
	}
}

func TestAdminResolveReport(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "marasti")
	author := testutil.CreateUser(t, ts.db, "Author", testutil.InNeighborhood(n))
	reporter := testutil.CreateUser(t, ts.db, "Reporter", testutil.InNeighborhood(n))
	mod := testutil.CreateUser(t, ts.db, "Mod", testutil.WithRole(models.RoleModerator))
	post := testutil.CreatePost(t, ts.db, author, n, models.CategorySell)

	resp := ts.do(http.MethodPost, "/api/reports", service.SubmitReportInput{
		TargetType: models.TargetPost, TargetID: post.ID, Reason: "scam",
	}, ts.tokenFor(reporter))
	requireStatus(t, resp, http.StatusCreated)
	reportID := *decode[service.ReportOutcome](t, resp).Data.ReportID
	modToken := ts.tokenFor(mod)

	resp = ts.do(http.MethodGet, "/api/admin/stats", nil, modToken)
	requireStatus(t, resp, http.StatusOK)
	assert.EqualValues(t, 1, decode[service.Stats](t, resp).Data.PendingReports)

	resp = ts.do(http.MethodGet, "/api/admin/reports?status=pending", nil, modToken)
	requireStatus(t, resp, http.StatusOK)
	listed := decode[[]models.Report](t, resp)
	require.Len(t, listed.Data, 1)
	var meta OffsetMeta
	require.NoError(t, json.Unmarshal(listed.Meta, &meta))
	assert.EqualValues(t, 1, meta.Total)
	assert.Equal(t, 1, meta.Page)

	resp = ts.do(http.MethodGet, "/api/admin/reports/"+reportID.String(), nil, modToken)
	requireStatus(t, resp, http.StatusOK)

	path := "/api/admin/reports/" + reportID.String()
	resp = ts.do(http.MethodPatch, path, service.ResolveReportInput{Action: "resolve"}, modToken)
	requireStatus(t, resp, http.StatusOK)
	report := decode[models.Report](t, resp).Data
	assert.Equal(t, models.ReportReviewed, report.Status)
	require.NotNil(t, report.ActionTaken)
	assert.Equal(t, models.ActionTakenReviewed, *report.ActionTaken)

	resp = ts.do(http.MethodPatch, path, service.ResolveReportInput{Action: "dismiss"}, modToken)
	requireStatus(t, resp, http.StatusConflict)

	resp = ts.do(http.MethodGet, "/api/admin/audit-logs?targetType=report", nil, modToken)
	requireStatus(t, resp, http.StatusOK)
	logs := decode[[]models.AuditLog](t, resp).Data
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditResolveReport, logs[0].Action)
	assert.Equal(t, mod.ID, logs[0].AdminView.ID)
}

func TestAdminHidePost(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "gara")
	author := testutil.CreateUser(t, ts.db, "Author", testutil.InNeighborhood(n))
	mod := testutil.CreateUser(t, ts.db, "Mod", testutil.WithRole(models.RoleModerator))
	post := testutil.CreatePost(t, ts.db, author, n, models.CategoryQuestion)
	modToken := ts.tokenFor(mod)

	// Warm the feed cache so hiding has to invalidate it.
	resp := ts.do(http.MethodGet, "/api/posts?neighborhood=gara", nil, "")
	require.Len(t, decode[[]models.Post](t, resp).Data, 1)

	resp = ts.do(http.MethodPatch, "/api/admin/posts/"+post.ID.String(),
		service.ModerateContentInput{Action: "hide", Reason: "off-topic"}, modToken)
	requireStatus(t, resp, http.StatusOK)
	assert.Equal(t, models.PostHidden, decode[models.Post](t, resp).Data.Status)

	resp = ts.do(http.MethodGet, "/api/posts?neighborhood=gara", nil, "")
	assert.Empty(t, decode[[]models.Post](t, resp).Data)

	resp = ts.do(http.MethodGet, "/api/admin/posts?filter=hidden", nil, modToken)
	requireStatus(t, resp, http.StatusOK)
	require.Len(t, decode[[]models.Post](t, resp).Data, 1)

	resp = ts.do(http.MethodGet, "/api/admin/posts?filter=bogus", nil, modToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(http.MethodPatch, "/api/admin/posts/"+post.ID.String(),
		service.ModerateContentInput{Action: "unhide"}, modToken)
	requireStatus(t, resp, http.StatusOK)
	assert.Equal(t, models.PostActive, decode[models.Post](t, resp).Data.Status)
}

func TestAdminHideComment(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "centru")
	author := testutil.CreateUser(t, ts.db, "Author", testutil.InNeighborhood(n))
	mod := testutil.CreateUser(t, ts.db, "Mod", testutil.WithRole(models.RoleModerator))
	post := testutil.CreatePost(t, ts.db, author, n, models.CategoryQuestion)
	comment := testutil.CreateComment(t, ts.db, author, post, nil)

	resp := ts.do(http.MethodPatch, "/api/admin/comments/"+comment.ID.String(),
		service.ModerateContentInput{Action: "hide"}, ts.tokenFor(mod))
	requireStatus(t, resp, http.StatusOK)
	assert.Equal(t, models.CommentHidden, decode[models.Comment](t, resp).Data.Status)

	resp = ts.do(http.MethodGet, "/api/comments?postId="+post.ID.String(), nil, "")
	assert.Empty(t, decode[[]models.Comment](t, resp).Data)
}

func TestAdminBanUser(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "iris")
	target := testutil.CreateUser(t, ts.db, "Spammer", testutil.InNeighborhood(n))
	mod := testutil.CreateUser(t, ts.db, "Mod", testutil.WithRole(models.RoleModerator))
	modToken := ts.tokenFor(mod)
	path := "/api/admin/users/" + target.ID.String()

	resp := ts.do(http.MethodPatch, path, service.ModerateUserInput{Action: "ban", Reason: "no"}, modToken)
	requireStatus(t, resp, http.StatusBadRequest)

	resp = ts.do(http.MethodPatch, "/api/admin/users/"+mod.ID.String(),
		service.ModerateUserInput{Action: "ban", Reason: "testing myself"}, modToken)
	requireStatus(t, resp, http.StatusBadRequest)

	resp = ts.do(http.MethodPatch, path, service.ModerateUserInput{Action: "ban", Reason: "repeated spam"}, modToken)
	requireStatus(t, resp, http.StatusOK)
	banned := decode[models.User](t, resp).Data
	assert.True(t, banned.IsBanned)

	resp = ts.do(http.MethodPatch, path, service.ModerateUserInput{Action: "ban", Reason: "repeated spam"}, modToken)
	requireStatus(t, resp, http.StatusConflict)

	resp = ts.do(http.MethodPost, "/api/posts", service.CreatePostInput{
		Body: "Still trying to post here.", Category: models.CategoryQuestion,
	}, ts.tokenFor(target))
	requireStatus(t, resp, http.StatusForbidden)

	resp = ts.do(http.MethodGet, "/api/admin/users?banned=true", nil, modToken)
	requireStatus(t, resp, http.StatusOK)
	users := decode[[]models.User](t, resp).Data
	require.Len(t, users, 1)
	assert.Equal(t, target.ID, users[0].ID)

	resp = ts.do(http.MethodGet, "/api/admin/users?banned=maybe", nil, modToken)
	requireStatus(t, resp, http.StatusBadRequest)

	resp = ts.do(http.MethodPatch, path, service.ModerateUserInput{Action: "role", Role: models.RoleModerator}, modToken)
	requireStatus(t, resp, http.StatusForbidden)

	resp = ts.do(http.MethodPatch, path, service.ModerateUserInput{Action: "unban"}, modToken)
	requireStatus(t, resp, http.StatusOK)
	assert.False(t, decode[models.User](t, resp).Data.IsBanned)
}

func TestAdminChangeRole(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	target := testutil.CreateUser(t, ts.db, "Helper")
	admin := testutil.CreateUser(t, ts.db, "Admin", testutil.WithRole(models.RoleAdmin))
	token := ts.tokenFor(admin)
	path := "/api/admin/users/" + target.ID.String()

	resp := ts.do(http.MethodPatch, path, service.ModerateUserInput{Action: "role", Role: "overlord"}, token)
	requireStatus(t, resp, http.StatusBadRequest)

	resp = ts.do(http.MethodPatch, path, service.ModerateUserInput{Action: "role", Role: models.RoleModerator}, token)
	requireStatus(t, resp, http.StatusOK)
	assert.Equal(t, models.RoleModerator, decode[models.User](t, resp).Data.Role)

	resp = ts.do(http.MethodGet, "/api/admin/stats", nil, ts.tokenFor(target))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
