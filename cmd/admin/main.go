// Command admin manages user roles from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"vecinu/internal/config"
	"vecinu/internal/database"
	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/repository"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "User role management",
		SilenceUsage: true,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "promote <email> [role]",
			Short: "Grant a role (admin by default)",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				role := models.RoleAdmin
				if len(args) == 2 {
					role = models.Role(strings.ToLower(args[1]))
				}
				return withUsers(cmd.Context(), func(users repository.UserRepository, _ *gorm.DB) error {
					return setRole(cmd, users, args[0], role)
				})
			},
		},
		&cobra.Command{
			Use:   "demote <email>",
			Short: "Reset a user to the regular user role",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withUsers(cmd.Context(), func(users repository.UserRepository, _ *gorm.DB) error {
					return setRole(cmd, users, args[0], models.RoleUser)
				})
			},
		},
		&cobra.Command{
			Use:   "list-staff",
			Short: "List moderators and admins",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withUsers(cmd.Context(), func(_ repository.UserRepository, db *gorm.DB) error {
					return listStaff(cmd, db)
				})
			},
		},
	)
	return root
}

func withUsers(ctx context.Context, fn func(repository.UserRepository, *gorm.DB) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.ConfigureLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	return fn(repository.NewUserRepository(db.WithContext(ctx)), db.WithContext(ctx))
}

func setRole(cmd *cobra.Command, users repository.UserRepository, email string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	ctx := cmd.Context()
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Role == role {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already has role %s\n", user.Email, role)
		return nil
	}
	if err := users.UpdateFields(ctx, user.ID, map[string]any{"role": role}); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", user.Email, user.Role, role)
	return nil
}

func listStaff(cmd *cobra.Command, db *gorm.DB) error {
	var staff []models.User
	err := db.Where("role IN ?", []models.Role{models.RoleModerator, models.RoleAdmin}).
		Order("role, email").Find(&staff).Error
	if err != nil {
		return fmt.Errorf("fetch staff: %w", err)
	}
	if len(staff) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no moderators or admins")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE")
	for _, u := range staff {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name(), u.Role)
	}
	return w.Flush()
}
