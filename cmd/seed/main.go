package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/config"
	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
	pginfra "github.com/oksasatya/go-social-graph/internal/infrastructure/postgres"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
)

// seed creates the initial admin account, or promotes it if the username exists.
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2, AppName: cfg.AppName + "-seed"})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	users := pginfra.NewUserRepository(pool)

	existing, err := users.GetByUsername(ctx, cfg.SeedAdminUsername)
	switch {
	case err == nil:
		if existing.Role != entity.RoleAdmin {
			role := entity.RoleAdmin
			if _, err := users.Patch(ctx, existing.ID, repository.UserPatch{Role: &role}); err != nil {
				logger.Fatalf("failed to promote %s: %v", existing.Username, err)
			}
		}
		logger.WithFields(logrus.Fields{"user_id": existing.ID, "username": existing.Username}).Info("admin already present")
		return
	case !errors.Is(err, repository.ErrNotFound):
		logger.Fatalf("failed to look up admin: %v", err)
	}

	hash, err := helpers.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		logger.Fatalf("failed to hash password: %v", err)
	}
	admin := &entity.User{
		ID:           uuid.NewString(),
		Username:     cfg.SeedAdminUsername,
		Email:        cfg.SeedAdminEmail,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		logger.Fatalf("failed to seed admin: %v", err)
	}
	logger.WithFields(logrus.Fields{"user_id": admin.ID, "username": admin.Username, "email": admin.Email}).Info("seeded admin")
}
