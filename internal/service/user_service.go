package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vecinu/internal/models"
	"vecinu/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService manages profiles, settings and neighborhood membership.
type UserService struct {
	db    *gorm.DB
	repos *Repositories
}

func NewUserService(db *gorm.DB, repos *Repositories) *UserService {
	return &UserService{db: db, repos: repos}
}

// Neighborhoods lists active neighborhoods ordered by name.
func (s *UserService) Neighborhoods(ctx context.Context) ([]models.Neighborhood, error) {
	return s.repos.Neighborhoods.ListActive(ctx)
}

// PublicProfile is what other residents see about a user.
type PublicProfile struct {
	ID           uuid.UUID            `json:"id"`
	Name         string               `json:"name"`
	AvatarURL    *string              `json:"avatarUrl"`
	Bio          *string              `json:"bio"`
	Role         models.Role          `json:"role"`
	Neighborhood *models.Neighborhood `json:"neighborhood,omitempty"`
	PostCount    int64                `json:"postCount"`
	CreatedAt    time.Time            `json:"createdAt"`
}

func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*PublicProfile, error) {
	user, err := s.repos.Users.GetByIDWithNeighborhood(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repos.Posts.CountByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{
		ID:           user.ID,
		Name:         user.Name(),
		AvatarURL:    user.AvatarURL,
		Bio:          user.Bio,
		Role:         user.Role,
		Neighborhood: user.Neighborhood,
		PostCount:    count,
		CreatedAt:    user.CreatedAt,
	}, nil
}

// Me returns the caller's own profile with their neighborhood.
func (s *UserService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repos.Users.GetByIDWithNeighborhood(ctx, id)
}

type SelectNeighborhoodInput struct {
	NeighborhoodID uuid.UUID `json:"neighborhoodId" validate:"required"`
}

// SelectNeighborhood moves the user into a neighborhood, keeping member
// counts of the old and new neighborhood in step.
func (s *UserService) SelectNeighborhood(ctx context.Context, userID uuid.UUID, in SelectNeighborhoodInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.moveTo(ctx, tx, userID, in.NeighborhoodID)
	})
	if err != nil {
		return nil, err
	}
	return s.repos.Users.GetByIDWithNeighborhood(ctx, userID)
}

func (s *UserService) moveTo(ctx context.Context, tx *gorm.DB, userID, neighborhoodID uuid.UUID) error {
	users := s.repos.Users.WithTx(tx)
	neighborhoods := s.repos.Neighborhoods.WithTx(tx)

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	target, err := neighborhoods.GetByID(ctx, neighborhoodID)
	if err != nil {
		return err
	}
	if !target.IsActive {
		return models.NewValidationError("Neighborhood is not available")
	}
	if user.NeighborhoodID != nil && *user.NeighborhoodID == target.ID {
		return nil
	}

	if err := users.UpdateFields(ctx, userID, map[string]any{"neighborhood_id": target.ID}); err != nil {
		return err
	}
	if user.NeighborhoodID != nil {
		if err := neighborhoods.AdjustMemberCount(ctx, *user.NeighborhoodID, -1); err != nil {
			return err
		}
	}
	return neighborhoods.AdjustMemberCount(ctx, target.ID, 1)
}

// Settings returns the caller's editable settings.
func (s *UserService) Settings(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repos.Users.GetByIDWithNeighborhood(ctx, userID)
}

type UpdateSettingsInput struct {
	DisplayName             *string                         `json:"displayName" validate:"omitempty,max=50"`
	Bio                     *string                         `json:"bio" validate:"omitempty,max=500"`
	NotificationPreferences *models.NotificationPreferences `json:"notificationPreferences"`
	Language                *string                         `json:"language" validate:"omitempty,oneof=ro"`
	NeighborhoodID          *uuid.UUID                      `json:"neighborhoodId"`
}

func (s *UserService) UpdateSettings(ctx context.Context, userID uuid.UUID, in UpdateSettingsInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	fields := profileFields(in.DisplayName, in.Bio)
	if in.Language != nil {
		fields["language"] = *in.Language
	}
	if in.NotificationPreferences != nil {
		// Map updates bypass the column serializer, so the document is encoded here.
		raw, err := json.Marshal(in.NotificationPreferences)
		if err != nil {
			return nil, fmt.Errorf("encode notification preferences: %w", err)
		}
		fields["notification_preferences"] = string(raw)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := s.repos.Users.WithTx(tx).UpdateFields(ctx, userID, fields); err != nil {
				return err
			}
		}
		if in.NeighborhoodID != nil {
			return s.moveTo(ctx, tx, userID, *in.NeighborhoodID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repos.Users.GetByIDWithNeighborhood(ctx, userID)
}

type UpdateProfileInput struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=50"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	fields := profileFields(in.DisplayName, in.Bio)
	if len(fields) > 0 {
		if err := s.repos.Users.UpdateFields(ctx, userID, fields); err != nil {
			return nil, err
		}
	}
	return s.repos.Users.GetByIDWithNeighborhood(ctx, userID)
}

// profileFields maps display name and bio edits to columns. An empty string
// clears the value.
func profileFields(displayName, bio *string) map[string]any {
	fields := map[string]any{}
	if displayName != nil {
		fields["display_name"] = validation.SanitizeOptional(displayName)
	}
	if bio != nil {
		fields["bio"] = validation.SanitizeOptional(bio)
	}
	return fields
}
