package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Neighborhood is a geographic community that scopes the feed.
type Neighborhood struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	City        string    `gorm:"size:100;not null" json:"city"`
	Description *string   `json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	MemberCount int       `gorm:"not null;default:0" json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (n *Neighborhood) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
