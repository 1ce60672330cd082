// Package bootstrap assembles the process runtime: configuration, tracing,
// database, Redis and the development root admin.
package bootstrap

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bulletin/internal/cache"
	"bulletin/internal/config"
	"bulletin/internal/database"
	"bulletin/internal/middleware"
	"bulletin/internal/models"
	"bulletin/internal/observability"
)

// Runtime holds everything a command needs after startup.
type Runtime struct {
	Cfg *config.Config
	DB  *gorm.DB

	shutdownTracing func(context.Context) error
}

// Init loads configuration and brings up the shared infrastructure.
func Init() (*Runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	middleware.InitMiddleware(cfg)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "bulletin-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExport,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.SamplerRatio,
	})
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)

	if cfg.DevBootstrapRoot {
		if err := EnsureRootAdmin(db, cfg); err != nil {
			middleware.Logger.Warn("root admin bootstrap failed", "error", err)
		}
	}

	return &Runtime{Cfg: cfg, DB: db, shutdownTracing: shutdownTracing}, nil
}

// Close flushes tracing. Database and Redis connections are process-scoped
// and closed by exit.
func (r *Runtime) Close(ctx context.Context) error {
	if r.shutdownTracing != nil {
		return r.shutdownTracing(ctx)
	}
	return nil
}

// EnsureRootAdmin creates the configured root admin when no admin account
// exists yet, so a fresh database has someone who can triage.
func EnsureRootAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.DevRootUsername == "" || cfg.DevRootEmail == "" || cfg.DevRootPassword == "" {
		return errors.New("DEV_ROOT_USERNAME, DEV_ROOT_EMAIL and DEV_ROOT_PASSWORD are all required")
	}

	var count int64
	if err := db.Model(&models.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DevRootPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	root := &models.User{
		Username:    cfg.DevRootUsername,
		Email:       cfg.DevRootEmail,
		Password:    string(hash),
		DisplayName: "Root Admin",
		IsAdmin:     true,
		IsActive:    true,
	}
	if err := db.Create(root).Error; err != nil {
		return err
	}

	middleware.Logger.Info("root admin created", "username", root.Username)
	return nil
}
