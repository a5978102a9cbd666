package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a user's privilege level.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleBusiness  Role = "business"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin, RoleBusiness:
		return true
	}
	return false
}

// DigestFrequency controls e-mail digest cadence.
type DigestFrequency string

const (
	DigestDaily  DigestFrequency = "daily"
	DigestWeekly DigestFrequency = "weekly"
	DigestNever  DigestFrequency = "never"
)

// NotificationPreferences are stored as a JSON document on the user row.
type NotificationPreferences struct {
	EmailComments bool            `json:"email_comments"`
	EmailAlerts   bool            `json:"email_alerts"`
	EmailDigest   DigestFrequency `json:"email_digest" validate:"oneof=daily weekly never"`
	PushEnabled   bool            `json:"push_enabled"`
}

// DefaultNotificationPreferences is applied to newly registered users.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		EmailComments: true,
		EmailAlerts:   true,
		EmailDigest:   DigestWeekly,
		PushEnabled:   false,
	}
}

// User is a registered resident. Credentials live with the identity provider;
// PasswordHash is only populated by the local development provider.
type User struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string        `gorm:"size:320;uniqueIndex;not null" json:"email"`
	FullName       string        `gorm:"size:100;not null" json:"fullName"`
	DisplayName    *string       `gorm:"size:50" json:"displayName"`
	AvatarURL      *string       `json:"avatarUrl"`
	Bio            *string       `gorm:"size:500" json:"bio"`
	Role           Role          `gorm:"size:20;not null;default:user;index" json:"role"`
	IsBanned       bool          `gorm:"not null;default:false;index" json:"isBanned"`
	BannedAt       *time.Time    `json:"bannedAt"`
	BannedReason   *string       `json:"bannedReason"`
	BannedBy       *uuid.UUID    `gorm:"type:uuid" json:"-"`
	NeighborhoodID *uuid.UUID    `gorm:"type:uuid;index" json:"neighborhoodId"`
	Neighborhood   *Neighborhood `gorm:"foreignKey:NeighborhoodID" json:"neighborhood,omitempty"`
	Language       string        `gorm:"size:5;not null;default:ro" json:"language"`

	NotificationPreferences NotificationPreferences `gorm:"serializer:json;type:jsonb" json:"notificationPreferences"`

	PasswordHash  string     `json:"-"`
	EmailVerified bool       `gorm:"not null;default:false" json:"emailVerified"`
	LastActiveAt  *time.Time `json:"lastActiveAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// BeforeCreate assigns a primary key when the caller did not.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// IsModerator reports whether the user may perform moderation actions.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Name is the public name shown next to content.
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.FullName
}

// Author is the public projection of a user embedded in posts and comments.
type Author struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatarUrl"`
	Role      Role      `json:"role"`
}

// AuthorOf projects u for public display. A nil user yields the zero Author.
func AuthorOf(u *User) Author {
	if u == nil {
		return Author{}
	}
	return Author{ID: u.ID, Name: u.Name(), AvatarURL: u.AvatarURL, Role: u.Role}
}
