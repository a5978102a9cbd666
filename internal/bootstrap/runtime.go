// Package bootstrap prepares reference data and development accounts when
// the API starts.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"vecinu/internal/config"
	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/repository"
	"vecinu/internal/seed"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime seeds the neighborhood catalogue when enabled and ensures the
// development admin account.
func InitRuntime(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}

	if cfg.SeedNeighborhoods {
		repo := repository.NewNeighborhoodRepository(db)
		if err := seed.Neighborhoods(ctx, repo, seed.Catalogue()); err != nil {
			return fmt.Errorf("failed to seed neighborhoods: %w", err)
		}
	}

	if err := EnsureDevAdmin(ctx, cfg, repository.NewUserRepository(db)); err != nil {
		return fmt.Errorf("failed to bootstrap development admin: %w", err)
	}
	return nil
}

// EnsureDevAdmin creates or promotes the development admin. It does nothing
// in production or when DEV_BOOTSTRAP_ADMIN is off. An existing account keeps
// its password; only its role and verification flag are raised.
func EnsureDevAdmin(ctx context.Context, cfg *config.Config, users repository.UserRepository) error {
	if cfg.IsProduction() || !cfg.DevBootstrapAdmin {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.DevAdminEmail))
	if email == "" {
		email = "admin@vecinu.local"
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin && existing.EmailVerified {
			return nil
		}
		if err := users.UpdateFields(ctx, existing.ID, map[string]any{
			"role":           models.RoleAdmin,
			"email_verified": true,
		}); err != nil {
			return err
		}
		middleware.Logger.Info("development admin promoted", slog.String("email", email))
		return nil
	case !models.IsCode(err, models.CodeNotFound):
		return err
	}

	if cfg.DevAdminPassword == "" {
		return fmt.Errorf("DEV_ADMIN_PASSWORD must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:                   email,
		FullName:                "Vecinu Admin",
		Role:                    models.RoleAdmin,
		Language:                "ro",
		NotificationPreferences: models.DefaultNotificationPreferences(),
		PasswordHash:            string(hashed),
		EmailVerified:           true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	middleware.Logger.Info("development admin created", slog.String("email", email))
	return nil
}
