package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/repository"

	"gorm.io/gorm"
)

// Options configuration for the demo seeder
type Options struct {
	NumUsers int
	NumPosts int
	// CommentsPerPost is an upper bound; each post gets 0..CommentsPerPost.
	CommentsPerPost int
	ShouldClean     bool
	SkipBcrypt      bool
	DryRun          bool
	BatchSize       int
	MaxDays         int
	// RandomSeed makes a run reproducible when non-zero.
	RandomSeed int64
}

// Result summarizes what a demo run created.
type Result struct {
	Users    int
	Posts    int
	Comments int
}

// Distribution weights post categories in generated feeds.
type Distribution map[models.PostCategory]int

// DefaultDistribution approximates a real neighborhood feed: mostly
// marketplace and questions, with the occasional alert.
var DefaultDistribution = Distribution{
	models.CategorySell:      30,
	models.CategoryQuestion:  20,
	models.CategoryService:   15,
	models.CategoryBuy:       10,
	models.CategoryEvent:     10,
	models.CategoryLostFound: 10,
	models.CategoryAlert:     5,
}

// computeCounts splits total across categories proportionally to the
// weights. Rounding remainders go to the largest fractional shares, so the
// counts always sum to total.
func computeCounts(total int, d Distribution) map[models.PostCategory]int {
	counts := make(map[models.PostCategory]int, len(d))
	weightSum := 0
	for _, w := range d {
		weightSum += w
	}
	if total <= 0 || weightSum <= 0 {
		return counts
	}

	type share struct {
		category models.PostCategory
		rem      int
	}
	shares := make([]share, 0, len(d))
	assigned := 0
	for _, category := range models.PostCategories {
		w, ok := d[category]
		if !ok || w <= 0 {
			continue
		}
		counts[category] = total * w / weightSum
		assigned += counts[category]
		shares = append(shares, share{category, total * w % weightSum})
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].rem > shares[j].rem })
	for i := 0; assigned < total; i++ {
		counts[shares[i%len(shares)].category]++
		assigned++
	}
	return counts
}

// Seeder creates demo residents, posts and comments across the active
// neighborhoods.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder builds a seeder over db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// Demo populates the database with demo content. Neighborhoods must already
// exist; run Neighborhoods first.
func Demo(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	return NewSeeder(db, opts).Run(ctx)
}

// Run executes the demo seed.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	log := middleware.Logger.With(slog.String("component", "seed"))
	log.Info("starting demo seed",
		slog.Int("users", s.opts.NumUsers),
		slog.Int("posts", s.opts.NumPosts),
		slog.Bool("clean", s.opts.ShouldClean),
	)

	if s.opts.ShouldClean && !s.opts.DryRun {
		if err := Clean(ctx, s.db); err != nil {
			return nil, fmt.Errorf("failed to clean demo data: %w", err)
		}
	}

	neighborhoods, err := repository.NewNeighborhoodRepository(s.db).ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list neighborhoods: %w", err)
	}
	if len(neighborhoods) == 0 {
		return nil, errors.New("no active neighborhoods; seed the catalogue first")
	}

	users, err := s.SeedUsers(ctx, neighborhoods, s.opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	log.Info("users created", slog.Int("count", len(users)))

	posts, err := s.SeedPosts(users, s.opts.NumPosts, DefaultDistribution)
	if err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	log.Info("posts created", slog.Int("count", len(posts)))

	comments, err := s.SeedComments(users, posts)
	if err != nil {
		return nil, fmt.Errorf("failed to create comments: %w", err)
	}
	log.Info("demo seed completed", slog.Int("comments", comments))

	return &Result{Users: len(users), Posts: len(posts), Comments: comments}, nil
}

// SeedUsers creates count residents spread across neighborhoods and keeps
// the member counts in step.
func (s *Seeder) SeedUsers(ctx context.Context, neighborhoods []models.Neighborhood, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	repo := repository.NewNeighborhoodRepository(s.db)
	for i := 0; i < count; i++ {
		n := &neighborhoods[i%len(neighborhoods)]
		user, err := s.factory.CreateUser(n)
		if err != nil {
			return users, err
		}
		if !s.opts.DryRun {
			if err := repo.AdjustMemberCount(ctx, n.ID, 1); err != nil {
				return users, err
			}
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedPosts creates total posts by random authors, with categories drawn
// from d. Each post lands in its author's neighborhood.
func (s *Seeder) SeedPosts(users []*models.User, total int, d Distribution) ([]*models.Post, error) {
	if len(users) == 0 || total <= 0 {
		return nil, nil
	}
	counts := computeCounts(total, d)
	posts := make([]*models.Post, 0, total)
	for _, category := range models.PostCategories {
		for i := 0; i < counts[category]; i++ {
			author := users[s.factory.rng.Intn(len(users))]
			post := s.factory.BuildPost(author, category)
			// A few marketplace listings are already gone.
			if category == models.CategorySell && s.factory.rng.Intn(8) == 0 {
				soldAt := post.CreatedAt.Add(time.Since(post.CreatedAt) / 2)
				post.Status = models.PostSold
				post.SoldAt = &soldAt
			}
			posts = append(posts, post)
		}
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// SeedComments adds short threads to posts. Only neighbors of the post's
// neighborhood comment, and roughly a third of the comments are replies.
func (s *Seeder) SeedComments(users []*models.User, posts []*models.Post) (int, error) {
	limit := s.opts.CommentsPerPost
	if limit <= 0 {
		return 0, nil
	}
	byNeighborhood := make(map[string][]*models.User)
	for _, u := range users {
		if u.NeighborhoodID != nil {
			key := u.NeighborhoodID.String()
			byNeighborhood[key] = append(byNeighborhood[key], u)
		}
	}

	created := 0
	for _, post := range posts {
		neighbors := byNeighborhood[post.NeighborhoodID.String()]
		if len(neighbors) == 0 {
			continue
		}
		var topLevel []*models.Comment
		for i := s.factory.rng.Intn(limit + 1); i > 0; i-- {
			author := neighbors[s.factory.rng.Intn(len(neighbors))]
			var parent *models.Comment
			if len(topLevel) > 0 && s.factory.rng.Intn(3) == 0 {
				parent = topLevel[s.factory.rng.Intn(len(topLevel))]
			}
			comment, err := s.factory.CreateComment(author, post, parent)
			if err != nil {
				return created, err
			}
			if parent == nil {
				topLevel = append(topLevel, comment)
			}
			created++
		}
		if s.factory.rng.Intn(4) == 0 {
			saver := neighbors[s.factory.rng.Intn(len(neighbors))]
			if saver.ID != post.AuthorID {
				if err := s.factory.SavePost(saver, post); err != nil {
					return created, err
				}
			}
		}
	}
	return created, nil
}

// Clean removes all user content and the demo accounts. Neighborhoods, the
// append-only audit log and non-demo accounts survive; member counts are
// recomputed afterwards.
func Clean(ctx context.Context, db *gorm.DB) error {
	middleware.Logger.Info("clearing demo data")
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		content := []interface{}{
			&models.Notification{},
			&models.Report{},
			&models.SavedPost{},
			&models.PostImage{},
			&models.Comment{},
			&models.Post{},
		}
		for _, model := range content {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("email LIKE ?", "%@"+DemoEmailDomain).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Exec(`UPDATE neighborhoods SET member_count = (
			SELECT COUNT(*) FROM users WHERE users.neighborhood_id = neighborhoods.id)`).Error
	})
}
