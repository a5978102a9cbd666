package server

import (
	"net/http"
	"testing"

	"vecinu/internal/models"
	"vecinu/internal/service"
	"vecinu/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListNeighborhoods(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/api/neighborhoods", nil, "")
	requireStatus(t, resp, http.StatusOK)
	assert.Empty(t, decode[[]models.Neighborhood](t, resp).Data)

	testutil.CreateNeighborhood(t, ts.db, "zorilor")
	testutil.CreateNeighborhood(t, ts.db, "andrei-muresanu")
	closed := testutil.CreateNeighborhood(t, ts.db, "closed")
	require.NoError(t, ts.db.Model(closed).Update("is_active", false).Error)

	resp = ts.do(http.MethodGet, "/api/neighborhoods", nil, "")
	requireStatus(t, resp, http.StatusOK)
	list := decode[[]models.Neighborhood](t, resp).Data
	require.Len(t, list, 2)
	for _, n := range list {
		assert.True(t, n.IsActive)
	}
}

func TestSelectNeighborhoodMovesMemberCounts(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	from := testutil.CreateNeighborhood(t, ts.db, "manastur")
	to := testutil.CreateNeighborhood(t, ts.db, "grigorescu")
	require.NoError(t, ts.db.Model(from).Update("member_count", 1).Error)
	user := testutil.CreateUser(t, ts.db, "Mover", testutil.InNeighborhood(from))
	token := ts.tokenFor(user)

	resp := ts.do(http.MethodPost, "/api/user/select-neighborhood",
		service.SelectNeighborhoodInput{NeighborhoodID: to.ID}, token)
	requireStatus(t, resp, http.StatusOK)
	moved := decode[models.User](t, resp).Data
	require.NotNil(t, moved.NeighborhoodID)
	assert.Equal(t, to.ID, *moved.NeighborhoodID)

	var reloadedFrom, reloadedTo models.Neighborhood
	require.NoError(t, ts.db.First(&reloadedFrom, "id = ?", from.ID).Error)
	require.NoError(t, ts.db.First(&reloadedTo, "id = ?", to.ID).Error)
	assert.Equal(t, 0, reloadedFrom.MemberCount)
	assert.Equal(t, 1, reloadedTo.MemberCount)

	resp = ts.do(http.MethodPost, "/api/user/select-neighborhood", map[string]any{}, token)
	requireStatus(t, resp, http.StatusBadRequest)
}

func TestSettingsRoundTrip(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	user := testutil.CreateUser(t, ts.db, "Settings")
	token := ts.tokenFor(user)

	resp := ts.do(http.MethodGet, "/api/user/settings", nil, token)
	requireStatus(t, resp, http.StatusOK)
	assert.Equal(t, models.DigestWeekly, decode[models.User](t, resp).Data.NotificationPreferences.EmailDigest)

	prefs := models.NotificationPreferences{EmailComments: false, EmailDigest: models.DigestNever, PushEnabled: true}
	resp = ts.do(http.MethodPatch, "/api/user/settings", service.UpdateSettingsInput{
		DisplayName:             ptr("Vecina <i>Ana</i>"),
		NotificationPreferences: &prefs,
	}, token)
	requireStatus(t, resp, http.StatusOK)
	updated := decode[models.User](t, resp).Data
	require.NotNil(t, updated.DisplayName)
	assert.Equal(t, "Vecina Ana", *updated.DisplayName)
	assert.Equal(t, prefs, updated.NotificationPreferences)

	resp = ts.do(http.MethodPatch, "/api/user/settings", service.UpdateSettingsInput{Language: ptr("en")}, token)
	requireStatus(t, resp, http.StatusBadRequest)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	user := testutil.CreateUser(t, ts.db, "Profile")
	token := ts.tokenFor(user)

	resp := ts.do(http.MethodPatch, "/api/user/profile", service.UpdateProfileInput{Bio: ptr("Gardening and bikes.")}, token)
	requireStatus(t, resp, http.StatusOK)
	require.NotNil(t, decode[models.User](t, resp).Data.Bio)

	resp = ts.do(http.MethodGet, "/api/users/"+user.ID.String(), nil, "")
	requireStatus(t, resp, http.StatusOK)
	profile := decode[service.PublicProfile](t, resp).Data
	require.NotNil(t, profile.Bio)
	assert.Equal(t, "Gardening and bikes.", *profile.Bio)

	assert.Equal(t, http.StatusUnauthorized,
		ts.do(http.MethodPatch, "/api/user/profile", service.UpdateProfileInput{}, "").StatusCode)
}
