// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostCategory classifies a post in the feed.
type PostCategory string

const (
	CategoryAlert     PostCategory = "ALERT"
	CategorySell      PostCategory = "SELL"
	CategoryBuy       PostCategory = "BUY"
	CategoryService   PostCategory = "SERVICE"
	CategoryQuestion  PostCategory = "QUESTION"
	CategoryEvent     PostCategory = "EVENT"
	CategoryLostFound PostCategory = "LOST_FOUND"
)

// PostCategories lists every category in display order.
var PostCategories = []PostCategory{
	CategoryAlert, CategorySell, CategoryBuy, CategoryService,
	CategoryQuestion, CategoryEvent, CategoryLostFound,
}

// Valid reports whether c is a known category.
func (c PostCategory) Valid() bool {
	for _, known := range PostCategories {
		if c == known {
			return true
		}
	}
	return false
}

// IsMarketplace reports whether posts in c can be marked as sold.
func (c PostCategory) IsMarketplace() bool {
	return c == CategorySell || c == CategoryBuy
}

// PostStatus is the visibility state of a post.
type PostStatus string

const (
	PostActive  PostStatus = "active"
	PostHidden  PostStatus = "hidden"
	PostSold    PostStatus = "sold"
	PostDeleted PostStatus = "deleted"
)

// Actor identifies who is driving a status transition.
type Actor int

const (
	ActorAuthor Actor = iota
	ActorModerator
)

func (a Actor) String() string {
	if a == ActorModerator {
		return "moderator"
	}
	return "author"
}

// CanTransitionPost validates a post status change. Allowed edges:
//
//	active -> hidden, hidden -> active      moderator
//	active <-> sold                         author, marketplace categories only
//	active|hidden|sold -> deleted           author or moderator
//
// deleted is terminal.
func CanTransitionPost(from, to PostStatus, actor Actor, category PostCategory) error {
	if from == PostDeleted {
		return NewValidationError("post has been deleted")
	}
	if from == to {
		return NewValidationError(fmt.Sprintf("post is already %s", to))
	}

	switch to {
	case PostDeleted:
		return nil
	case PostHidden:
		if from == PostActive && actor == ActorModerator {
			return nil
		}
	case PostActive:
		if from == PostHidden && actor == ActorModerator {
			return nil
		}
		if from == PostSold && actor == ActorAuthor {
			return nil
		}
	case PostSold:
		if from == PostActive && actor == ActorAuthor {
			if !category.IsMarketplace() {
				return NewValidationError("only marketplace posts can be marked as sold")
			}
			return nil
		}
	}

	return NewValidationError(fmt.Sprintf("cannot change post status from %s to %s as %s", from, to, actor))
}

// Post is a piece of neighborhood content.
type Post struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey;index:idx_posts_feed,priority:5" json:"id"`
	AuthorID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"authorId"`
	Author         *User         `gorm:"foreignKey:AuthorID" json:"-"`
	NeighborhoodID uuid.UUID     `gorm:"type:uuid;not null;index:idx_posts_feed,priority:1" json:"neighborhoodId"`
	Neighborhood   *Neighborhood `gorm:"foreignKey:NeighborhoodID" json:"neighborhood,omitempty"`
	Title          *string       `gorm:"size:200" json:"title"`
	Body           string        `gorm:"type:text;not null" json:"body"`
	Category       PostCategory  `gorm:"size:20;not null;index" json:"category"`
	Status         PostStatus    `gorm:"size:20;not null;default:active;index:idx_posts_feed,priority:2" json:"status"`
	PriceCents     *int64        `json:"priceCents"`
	IsFree         bool          `gorm:"not null;default:false" json:"isFree"`
	IsPinned       bool          `gorm:"not null;default:false;index:idx_posts_feed,priority:3" json:"isPinned"`
	CommentCount   int           `gorm:"not null;default:0" json:"commentCount"`
	ViewCount      int           `gorm:"not null;default:0" json:"viewCount"`
	Images         []PostImage   `gorm:"foreignKey:PostID" json:"images"`
	SoldAt         *time.Time    `json:"soldAt"`
	CreatedAt      time.Time     `gorm:"index:idx_posts_feed,priority:4" json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`

	// AuthorView is the public projection of Author for API responses.
	AuthorView Author `gorm:"-" json:"author"`
	// IsSaved is computed per requesting user.
	IsSaved bool `gorm:"-" json:"isSaved"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PostActive
	}
	return nil
}

// AfterFind fills the public author projection once the association is loaded.
func (p *Post) AfterFind(*gorm.DB) error {
	if p.Author != nil {
		p.AuthorView = AuthorOf(p.Author)
	}
	return nil
}

// IsVisible reports whether the post appears in public reads.
func (p *Post) IsVisible() bool {
	return p.Status == PostActive || p.Status == PostSold
}

// PostImage is an uploaded image attached to a post.
type PostImage struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID       uuid.UUID `gorm:"type:uuid;not null;index" json:"postId"`
	ObjectKey    string    `gorm:"not null" json:"-"`
	URL          string    `gorm:"not null" json:"url"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
	Width        *int      `json:"width"`
	Height       *int      `json:"height"`
	SizeBytes    int64     `gorm:"not null" json:"sizeBytes"`
	Position     int       `gorm:"not null;default:0" json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (i *PostImage) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// SavedPost is the join between a user and a bookmarked post.
type SavedPost struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"userId"`
	PostID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"postId"`
	Post      *Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
