// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"vecinu/internal/database"
	"vecinu/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB returns an isolated in-memory SQLite database with every persistent
// model migrated. The pool is pinned to a single connection, so code running
// inside a transaction must use the transaction handle for all queries.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:vecinu_%d_%s?mode=memory&cache=shared", dbSeq.Add(1), uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(logger.Discard))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// CreateNeighborhood inserts an active neighborhood with the given slug.
func CreateNeighborhood(t testing.TB, db *gorm.DB, slug string) *models.Neighborhood {
	t.Helper()
	n := &models.Neighborhood{
		Name:     strings.ToUpper(slug[:1]) + slug[1:],
		Slug:     slug,
		City:     "Cluj-Napoca",
		IsActive: true,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

// UserOption customises a fixture user before insertion.
type UserOption func(*models.User)

// WithRole sets the fixture user's role.
func WithRole(role models.Role) UserOption {
	return func(u *models.User) { u.Role = role }
}

// InNeighborhood places the fixture user in n.
func InNeighborhood(n *models.Neighborhood) UserOption {
	return func(u *models.User) { u.NeighborhoodID = &n.ID }
}

// Banned marks the fixture user as banned.
func Banned(reason string) UserOption {
	return func(u *models.User) {
		now := time.Now().UTC()
		u.IsBanned = true
		u.BannedAt = &now
		u.BannedReason = &reason
	}
}

// CreateUser inserts a user with a unique e-mail address.
func CreateUser(t testing.TB, db *gorm.DB, name string, opts ...UserOption) *models.User {
	t.Helper()
	u := &models.User{
		ID:                      uuid.New(),
		Email:                   fmt.Sprintf("%s-%d@vecinu.test", strings.ToLower(strings.ReplaceAll(name, " ", ".")), dbSeq.Add(1)),
		FullName:                name,
		Role:                    models.RoleUser,
		Language:                "ro",
		NotificationPreferences: models.DefaultNotificationPreferences(),
		EmailVerified:           true,
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// PostOption customises a fixture post before insertion.
type PostOption func(*models.Post)

// WithStatus sets the fixture post's status.
func WithStatus(s models.PostStatus) PostOption {
	return func(p *models.Post) { p.Status = s }
}

// CreatedAt pins the fixture post's creation time.
func CreatedAt(ts time.Time) PostOption {
	return func(p *models.Post) { p.CreatedAt = ts.UTC() }
}

// Pinned marks the fixture post as pinned.
func Pinned() PostOption {
	return func(p *models.Post) { p.IsPinned = true }
}

// CreatePost inserts a post by author in n.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, n *models.Neighborhood, category models.PostCategory, opts ...PostOption) *models.Post {
	t.Helper()
	title := fmt.Sprintf("%s post %d", category, dbSeq.Add(1))
	p := &models.Post{
		AuthorID:       author.ID,
		NeighborhoodID: n.ID,
		Title:          &title,
		Body:           "A post body long enough to be valid.",
		Category:       category,
		Status:         models.PostActive,
	}
	if category == models.CategorySell {
		price := int64(15000)
		p.PriceCents = &price
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateComment inserts an active comment and bumps the post's comment count.
func CreateComment(t testing.TB, db *gorm.DB, author *models.User, post *models.Post, parent *models.Comment) *models.Comment {
	t.Helper()
	c := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Body:     "Fixture comment",
	}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	require.NoError(t, db.Create(c).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error)
	return c
}
