// Package seed provides helpers to create reference and demo data for the
// application database. Demo helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoEmailDomain marks accounts created by the demo seeder so a clean run
// can remove them without touching real accounts.
const DemoEmailDomain = "demo.vecinu.local"

// DemoPassword is the password of every demo account.
const DemoPassword = "Vecinu2024!"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the demo seeder and tests.
type Factory struct {
	db    *gorm.DB
	opts  Options
	rng   *rand.Rand
	faker *gofakeit.Faker

	// built keeps generated e-mail addresses unique within a run.
	built int

	// hashed once; bcrypt dominates seeding time otherwise
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{
		db:    db,
		opts:  opts,
		rng:   rand.New(rand.NewSource(seed)),
		faker: gofakeit.New(seed),
	}
}

func (f *Factory) hash() string {
	if f.passwordHash != "" {
		return f.passwordHash
	}
	if f.opts.SkipBcrypt {
		f.passwordHash = DemoPassword
		return f.passwordHash
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt only fails on oversize input, which DemoPassword is not.
		panic(err)
	}
	f.passwordHash = string(hashed)
	return f.passwordHash
}

func (f *Factory) pick(list []string) string {
	return list[f.rng.Intn(len(list))]
}

// createdAt spreads timestamps over the last MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().UTC().Add(-back)
}

// BuildUser constructs a demo resident without persisting it.
func (f *Factory) BuildUser(neighborhood *models.Neighborhood, overrides ...func(*models.User)) *models.User {
	first, last := f.pick(firstNames), f.pick(lastNames)
	f.built++
	local := fmt.Sprintf("%s.%s.%d", validation.Slugify(first), validation.Slugify(last), f.built)
	bio := f.pick(bios)
	avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", local)

	user := &models.User{
		ID:                      uuid.New(),
		Email:                   local + "@" + DemoEmailDomain,
		FullName:                first + " " + last,
		Bio:                     &bio,
		AvatarURL:               &avatar,
		Role:                    models.RoleUser,
		Language:                "ro",
		NotificationPreferences: models.DefaultNotificationPreferences(),
		PasswordHash:            f.hash(),
		EmailVerified:           true,
	}
	if neighborhood != nil {
		user.NeighborhoodID = &neighborhood.ID
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser constructs and persists a demo resident.
func (f *Factory) CreateUser(neighborhood *models.Neighborhood, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(neighborhood, overrides...)
	if f.opts.DryRun {
		middleware.Logger.Debug("[dry-run] CreateUser", slog.String("email", user.Email))
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post of the given category with content shaped
// like the category, without persisting it.
func (f *Factory) BuildPost(author *models.User, category models.PostCategory, overrides ...func(*models.Post)) *models.Post {
	tmpl := postTemplates[category]
	subject := f.pick(tmpl.subjects)
	title := fmt.Sprintf(tmpl.title, subject)
	body := fmt.Sprintf(tmpl.body, subject, f.faker.Sentence(8+f.rng.Intn(8)))

	post := &models.Post{
		ID:        uuid.New(),
		AuthorID:  author.ID,
		Title:     &title,
		Body:      body,
		Category:  category,
		Status:    models.PostActive,
		CreatedAt: f.createdAt(),
	}
	if author.NeighborhoodID != nil {
		post.NeighborhoodID = *author.NeighborhoodID
	}
	post.UpdatedAt = post.CreatedAt

	switch category {
	case models.CategorySell:
		if f.rng.Intn(5) == 0 {
			post.IsFree = true
		} else {
			price := int64(f.faker.Number(5, 2000)) * 100
			post.PriceCents = &price
		}
	case models.CategoryBuy:
		if f.rng.Intn(2) == 0 {
			price := int64(f.faker.Number(10, 500)) * 100
			post.PriceCents = &price
		}
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in batched inserts.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		middleware.Logger.Debug("[dry-run] CreatePostsBatch", slog.Int("posts", len(posts)))
		return nil
	}
	batch := f.opts.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return f.db.CreateInBatches(posts, batch).Error
}

// BuildComment constructs a comment on post, optionally as a reply to parent.
func (f *Factory) BuildComment(author *models.User, post *models.Post, parent *models.Comment) *models.Comment {
	comment := &models.Comment{
		ID:       uuid.New(),
		PostID:   post.ID,
		AuthorID: author.ID,
		Body:     f.pick(commentOpeners) + " " + f.faker.Sentence(6+f.rng.Intn(6)),
		Status:   models.CommentActive,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	// Comments follow the post they answer.
	base := post.CreatedAt
	if parent != nil {
		base = parent.CreatedAt
	}
	since := time.Since(base)
	if since > time.Minute {
		comment.CreatedAt = base.Add(time.Duration(f.rng.Int63n(int64(since))))
	} else {
		comment.CreatedAt = base
	}
	comment.UpdatedAt = comment.CreatedAt
	return comment
}

// CreateComment persists a comment and bumps the post's comment count.
func (f *Factory) CreateComment(author *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	comment := f.BuildComment(author, post, parent)
	if f.opts.DryRun {
		return comment, nil
	}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	post.CommentCount++
	return comment, nil
}

// SavePost bookmarks post for user.
func (f *Factory) SavePost(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Create(&models.SavedPost{UserID: user.ID, PostID: post.ID}).Error
}
