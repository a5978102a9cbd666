package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"vecinu/internal/models"
	"vecinu/internal/service"
	"vecinu/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreatePostAndReadIt(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "gheorgheni")
	author := testutil.CreateUser(t, ts.db, "Ana", testutil.InNeighborhood(n))
	token := ts.tokenFor(author)

	resp := ts.do(http.MethodPost, "/api/posts", service.CreatePostInput{
		Title:      ptr("Bicicletă de vânzare"),
		Body:       "Bicicletă de oraș, <b>puțin</b> folosită.",
		Category:   models.CategorySell,
		PriceCents: ptr(int64(45000)),
	}, token)
	requireStatus(t, resp, http.StatusCreated)
	post := decode[models.Post](t, resp).Data
	assert.Equal(t, n.ID, post.NeighborhoodID)
	assert.Equal(t, models.PostActive, post.Status)
	assert.NotContains(t, post.Body, "<b>")
	assert.Equal(t, author.ID, post.AuthorView.ID)

	resp = ts.do(http.MethodGet, "/api/posts/"+post.ID.String(), nil, "")
	requireStatus(t, resp, http.StatusOK)
	got := decode[models.Post](t, resp).Data
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, 1, got.ViewCount)
}

func TestCreatePostRequiresNeighborhood(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	author := testutil.CreateUser(t, ts.db, "Homeless")

	resp := ts.do(http.MethodPost, "/api/posts", service.CreatePostInput{
		Body:     "Someone lost a cat near the park.",
		Category: models.CategoryLostFound,
	}, ts.tokenFor(author))
	requireStatus(t, resp, http.StatusBadRequest)
	assert.Equal(t, models.CodeValidation, decodeError(t, resp).Code)
}

func TestCreatePostRejectsUnknownCategory(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "zorilor")
	author := testutil.CreateUser(t, ts.db, "Ana", testutil.InNeighborhood(n))

	resp := ts.do(http.MethodPost, "/api/posts", map[string]any{
		"body":     "A perfectly fine body text.",
		"category": "GOSSIP",
	}, ts.tokenFor(author))
	requireStatus(t, resp, http.StatusBadRequest)
	assert.Contains(t, decodeError(t, resp).Details, "category")
}

func TestBannedUserCannotPost(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "manastur")
	banned := testutil.CreateUser(t, ts.db, "Troll", testutil.InNeighborhood(n), testutil.Banned("spam"))

	resp := ts.do(http.MethodPost, "/api/posts", service.CreatePostInput{
		Body:     "Buy my stuff buy my stuff.",
		Category: models.CategorySell,
	}, ts.tokenFor(banned))
	requireStatus(t, resp, http.StatusForbidden)
}

func TestFeedPaginatesPinnedFirst(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "centru")
	other := testutil.CreateNeighborhood(t, ts.db, "marasti")
	author := testutil.CreateUser(t, ts.db, "Ana", testutil.InNeighborhood(n))

	base := time.Now().Add(-time.Hour)
	pinned := testutil.CreatePost(t, ts.db, author, n, models.CategoryAlert, testutil.CreatedAt(base), testutil.Pinned())
	for i := 1; i <= 3; i++ {
		testutil.CreatePost(t, ts.db, author, n, models.CategoryQuestion, testutil.CreatedAt(base.Add(time.Duration(i)*time.Minute)))
	}
	testutil.CreatePost(t, ts.db, author, n, models.CategoryQuestion, testutil.WithStatus(models.PostHidden))
	testutil.CreatePost(t, ts.db, author, other, models.CategoryQuestion)

	resp := ts.do(http.MethodGet, "/api/posts?neighborhood=centru&limit=2", nil, "")
	requireStatus(t, resp, http.StatusOK)
	first := decode[[]models.Post](t, resp)
	require.Len(t, first.Data, 2)
	assert.Equal(t, pinned.ID, first.Data[0].ID)

	var meta CursorMeta
	require.NoError(t, json.Unmarshal(first.Meta, &meta))
	require.True(t, meta.HasMore)
	require.NotEmpty(t, meta.Cursor)

	resp = ts.do(http.MethodGet, "/api/posts?neighborhood=centru&limit=2&cursor="+meta.Cursor, nil, "")
	requireStatus(t, resp, http.StatusOK)
	second := decode[[]models.Post](t, resp)
	require.Len(t, second.Data, 2)
	require.NoError(t, json.Unmarshal(second.Meta, &meta))
	assert.False(t, meta.HasMore)

	seen := map[string]bool{}
	for _, p := range append(first.Data, second.Data...) {
		assert.False(t, seen[p.ID.String()], "post repeated across pages")
		seen[p.ID.String()] = true
		assert.Equal(t, n.ID, p.NeighborhoodID)
		assert.Equal(t, models.PostActive, p.Status)
	}
}

func TestFeedDefaultsToViewerNeighborhood(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "grigorescu")
	viewer := testutil.CreateUser(t, ts.db, "Ana", testutil.InNeighborhood(n))
	testutil.CreatePost(t, ts.db, viewer, n, models.CategoryEvent)

	resp := ts.do(http.MethodGet, "/api/posts", nil, ts.tokenFor(viewer))
	requireStatus(t, resp, http.StatusOK)
	assert.Len(t, decode[[]models.Post](t, resp).Data, 1)

	resp = ts.do(http.MethodGet, "/api/posts", nil, "")
	requireStatus(t, resp, http.StatusBadRequest)
}

func TestFeedRejectsBadCursorAndCategory(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	testutil.CreateNeighborhood(t, ts.db, "iris")

	resp := ts.do(http.MethodGet, "/api/posts?neighborhood=iris&cursor=bm90LWpzb24", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(http.MethodGet, "/api/posts?neighborhood=iris&category=nope", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(http.MethodGet, "/api/posts?neighborhood=unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHiddenPostVisibility(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "buna-ziua")
	author := testutil.CreateUser(t, ts.db, "Author", testutil.InNeighborhood(n))
	stranger := testutil.CreateUser(t, ts.db, "Stranger", testutil.InNeighborhood(n))
	mod := testutil.CreateUser(t, ts.db, "Mod", testutil.WithRole(models.RoleModerator))
	hidden := testutil.CreatePost(t, ts.db, author, n, models.CategoryQuestion, testutil.WithStatus(models.PostHidden))
	path := "/api/posts/" + hidden.ID.String()

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, path, nil, "").StatusCode)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, path, nil, ts.tokenFor(stranger)).StatusCode)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, path, nil, ts.tokenFor(author)).StatusCode)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, path, nil, ts.tokenFor(mod)).StatusCode)
}

func TestGetPostInvalidID(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/api/posts/not-a-uuid", nil, "")
	requireStatus(t, resp, http.StatusBadRequest)
	assert.Equal(t, "Invalid ID", decodeError(t, resp).Error)
}

func TestUpdatePostOwnership(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "someseni")
	author := testutil.CreateUser(t, ts.db, "Author", testutil.InNeighborhood(n))
	other := testutil.CreateUser(t, ts.db, "Other", testutil.InNeighborhood(n))
	post := testutil.CreatePost(t, ts.db, author, n, models.CategoryService)
	path := "/api/posts/" + post.ID.String()

	resp := ts.do(http.MethodPatch, path, service.UpdatePostInput{Body: ptr("Someone else's words here.")}, ts.tokenFor(other))
	requireStatus(t, resp, http.StatusForbidden)

	resp = ts.do(http.MethodPatch, path, service.UpdatePostInput{Body: ptr("Fresh text for the service offer.")}, ts.tokenFor(author))
	requireStatus(t, resp, http.StatusOK)
	assert.Equal(t, "Fresh text for the service offer.", decode[models.Post](t, resp).Data.Body)
}

func TestToggleSold(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "dambul-rotund")
	seller := testutil.CreateUser(t, ts.db, "Seller", testutil.InNeighborhood(n))
	buyer := testutil.CreateUser(t, ts.db, "Buyer", testutil.InNeighborhood(n))
	listing := testutil.CreatePost(t, ts.db, seller, n, models.CategorySell)
	question := testutil.CreatePost(t, ts.db, seller, n, models.CategoryQuestion)

	buyerToken := ts.tokenFor(buyer)
	requireStatus(t, ts.do(http.MethodPost, "/api/posts/"+listing.ID.String()+"/save", nil, buyerToken), http.StatusOK)

	sellerToken := ts.tokenFor(seller)
	resp := ts.do(http.MethodPatch, "/api/posts/"+listing.ID.String()+"/sold", nil, sellerToken)
	requireStatus(t, resp, http.StatusOK)
	sold := decode[models.Post](t, resp).Data
	assert.Equal(t, models.PostSold, sold.Status)
	assert.NotNil(t, sold.SoldAt)

	resp = ts.do(http.MethodGet, "/api/notifications", nil, buyerToken)
	requireStatus(t, resp, http.StatusOK)
	inbox := decode[[]models.Notification](t, resp)
	require.Len(t, inbox.Data, 1)
	assert.Equal(t, models.NotificationPostSold, inbox.Data[0].Type)

	resp = ts.do(http.MethodPatch, "/api/posts/"+listing.ID.String()+"/sold", nil, sellerToken)
	requireStatus(t, resp, http.StatusOK)
	assert.Equal(t, models.PostActive, decode[models.Post](t, resp).Data.Status)

	resp = ts.do(http.MethodPatch, "/api/posts/"+question.ID.String()+"/sold", nil, sellerToken)
	requireStatus(t, resp, http.StatusBadRequest)

	resp = ts.do(http.MethodPatch, "/api/posts/"+listing.ID.String()+"/sold", nil, buyerToken)
	requireStatus(t, resp, http.StatusForbidden)
}

func TestSaveAndListSaved(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "bulgaria")
	author := testutil.CreateUser(t, ts.db, "Author", testutil.InNeighborhood(n))
	reader := testutil.CreateUser(t, ts.db, "Reader", testutil.InNeighborhood(n))
	post := testutil.CreatePost(t, ts.db, author, n, models.CategoryEvent)
	token := ts.tokenFor(reader)
	savePath := "/api/posts/" + post.ID.String() + "/save"

	requireStatus(t, ts.do(http.MethodPost, savePath, nil, token), http.StatusOK)
	requireStatus(t, ts.do(http.MethodPost, savePath, nil, token), http.StatusOK)

	resp := ts.do(http.MethodGet, "/api/posts/saved", nil, token)
	requireStatus(t, resp, http.StatusOK)
	saved := decode[[]models.Post](t, resp).Data
	require.Len(t, saved, 1)
	assert.True(t, saved[0].IsSaved)

	resp = ts.do(http.MethodGet, "/api/posts/"+post.ID.String(), nil, token)
	assert.True(t, decode[models.Post](t, resp).Data.IsSaved)

	requireStatus(t, ts.do(http.MethodDelete, savePath, nil, token), http.StatusOK)
	resp = ts.do(http.MethodGet, "/api/posts/saved", nil, token)
	assert.Empty(t, decode[[]models.Post](t, resp).Data)
}

func TestDeletePost(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "europa")
	author := testutil.CreateUser(t, ts.db, "Author", testutil.InNeighborhood(n))
	mod := testutil.CreateUser(t, ts.db, "Mod", testutil.WithRole(models.RoleModerator))
	own := testutil.CreatePost(t, ts.db, author, n, models.CategoryQuestion)
	moderated := testutil.CreatePost(t, ts.db, author, n, models.CategoryQuestion)

	requireStatus(t, ts.do(http.MethodDelete, "/api/posts/"+own.ID.String(), nil, ts.tokenFor(author)), http.StatusOK)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/posts/"+own.ID.String(), nil, "").StatusCode)
	assert.Equal(t, http.StatusNotFound,
		ts.do(http.MethodDelete, "/api/posts/"+own.ID.String(), nil, ts.tokenFor(author)).StatusCode)

	resp := ts.do(http.MethodDelete, "/api/posts/"+moderated.ID.String()+"?reason=off-topic", nil, ts.tokenFor(mod))
	requireStatus(t, resp, http.StatusOK)

	var logs []models.AuditLog
	require.NoError(t, ts.db.Where("target_id = ?", moderated.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditDeletePost, logs[0].Action)
	require.NotNil(t, logs[0].Reason)
	assert.Equal(t, "off-topic", *logs[0].Reason)
}

func TestSearchPosts(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "intre-lacuri")
	author := testutil.CreateUser(t, ts.db, "Author", testutil.InNeighborhood(n))
	match := testutil.CreatePost(t, ts.db, author, n, models.CategorySell)
	require.NoError(t, ts.db.Model(match).Update("body", "Vând canapea extensibilă, stare bună.").Error)
	testutil.CreatePost(t, ts.db, author, n, models.CategoryQuestion)

	resp := ts.do(http.MethodGet, "/api/search?q=CANAPEA", nil, "")
	requireStatus(t, resp, http.StatusOK)
	results := decode[[]models.Post](t, resp).Data
	require.Len(t, results, 1)
	assert.Equal(t, match.ID, results[0].ID)

	resp = ts.do(http.MethodGet, "/api/search?q=a", nil, "")
	requireStatus(t, resp, http.StatusBadRequest)

	resp = ts.do(http.MethodGet, "/api/search?q="+strings.Repeat("x", 101), nil, "")
	requireStatus(t, resp, http.StatusBadRequest)
}

func TestUserPostsAndProfile(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	n := testutil.CreateNeighborhood(t, ts.db, "andrei-muresanu")
	author := testutil.CreateUser(t, ts.db, "Author", testutil.InNeighborhood(n))
	testutil.CreatePost(t, ts.db, author, n, models.CategoryEvent)
	testutil.CreatePost(t, ts.db, author, n, models.CategoryEvent, testutil.WithStatus(models.PostDeleted))

	resp := ts.do(http.MethodGet, "/api/users/"+author.ID.String()+"/posts", nil, "")
	requireStatus(t, resp, http.StatusOK)
	assert.Len(t, decode[[]models.Post](t, resp).Data, 1)

	resp = ts.do(http.MethodGet, "/api/users/"+author.ID.String(), nil, "")
	requireStatus(t, resp, http.StatusOK)
	var profile map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&profile))
	data, _ := profile["data"].(map[string]any)
	assert.NotContains(t, data, "email")
}
