package service

import (
	"testing"
	"time"

	"vecinu/internal/cache"
	"vecinu/internal/identity"
	"vecinu/internal/models"
	"vecinu/internal/storage"
	"vecinu/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	mr      *miniredis.Miniredis
	objects *storage.MemoryStore
	svc     *Services
	auth    *identity.Authenticator
}

// newTestEnv wires every service over SQLite and miniredis. Notifications run
// inline so their effects are visible as soon as the call returns.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repos := NewRepositories(db)
	tokens := identity.NewTokens("test-secret-that-is-long-enough-1234", "vecinu", "", time.Hour)
	auth := identity.NewAuthenticator(tokens, repos.Users, rdb)
	objects := storage.NewMemoryStore("http://localhost:8080/media")

	svc := New(Deps{
		DB:            db,
		Cache:         cache.NewStore(rdb, true),
		Objects:       objects,
		Provider:      identity.NewLocalProvider(repos.Users, tokens),
		Authenticator: auth,
	})
	return &testEnv{db: db, mr: mr, objects: objects, svc: svc, auth: auth}
}

func (e *testEnv) auditCount(t *testing.T, targetID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.AuditLog{}).Where("target_id = ?", targetID).Count(&n).Error)
	return n
}

func (e *testEnv) notificationsFor(t *testing.T, userID uuid.UUID) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, e.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error)
	return out
}

func (e *testEnv) reload(t *testing.T, post *models.Post) *models.Post {
	t.Helper()
	var p models.Post
	require.NoError(t, e.db.First(&p, "id = ?", post.ID).Error)
	return &p
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := models.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, appErr.Message)
}
