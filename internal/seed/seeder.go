package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/karkasai/karkasai-backend/internal/config"
	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/repository"
	"github.com/karkasai/karkasai-backend/internal/service"
)

// Run makes the role dictionary and the bootstrap admin account exist. It is
// idempotent and runs on every startup before the server accepts traffic.
func Run(ctx context.Context, users *service.UserService, repo repository.UserRepository, cfg *config.Config, log *slog.Logger) error {
	for _, name := range domain.AllRoles {
		if _, err := repo.EnsureRole(ctx, name); err != nil {
			return fmt.Errorf("ensure role %s: %w", name, err)
		}
	}

	if _, err := users.FindByUsername(ctx, cfg.AdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("look up admin account: %w", err)
	}

	if cfg.AdminPassword == "" {
		log.Warn("ADMIN_PASSWORD not set, skipping admin account seed")
		return nil
	}

	admin, fieldErrs, err := users.CreateAccount(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	if len(fieldErrs) > 0 {
		return fmt.Errorf("admin credentials rejected by policy: %v", fieldErrs)
	}
	for _, role := range domain.AllRoles {
		if err := users.AssignRole(ctx, admin.ID, role); err != nil {
			return fmt.Errorf("assign %s to admin: %w", role, err)
		}
	}
	log.Info("seeded admin account", "username", cfg.AdminUsername)
	return nil
}
