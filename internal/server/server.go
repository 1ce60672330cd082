// Package server wires the HTTP surface: Fiber app, middleware chain and
// the bulletin routes.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"bulletin/internal/config"
	"bulletin/internal/middleware"
	"bulletin/internal/models"
	"bulletin/internal/repository"
	"bulletin/internal/service"
)

// Server holds the Fiber app and the services the handlers dispatch to.
type Server struct {
	App *fiber.App

	cfg *config.Config
	db  *gorm.DB
	rdb *redis.Client

	requests *service.RequestService
	comments *service.CommentService
	taxonomy *service.TaxonomyService
	contexts *service.ContextService
	users    repository.UserRepository
}

// New builds a fully wired Server. rdb may be nil; rate limiting then fails
// open.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Server {
	requestRepo := repository.NewRequestRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	statusRepo := repository.NewStatusOptionRepository(db)
	userRepo := repository.NewUserRepository(db)

	contexts := service.NewContextService(userRepo)

	s := &Server{
		cfg:      cfg,
		db:       db,
		rdb:      rdb,
		requests: service.NewRequestService(requestRepo, statusRepo, userRepo, contexts.IsAdmin),
		comments: service.NewCommentService(commentRepo, requestRepo),
		taxonomy: service.NewTaxonomyService(categoryRepo, statusRepo),
		contexts: contexts,
		users:    userRepo,
	}

	s.App = fiber.New(fiber.Config{
		AppName:      "bulletin-api",
		ErrorHandler: errorHandler,
	})
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return models.RespondWithError(c, code, err)
}

func (s *Server) setupMiddleware() {
	s.App.Use(recover.New())
	s.App.Use(requestid.New())
	s.App.Use(middleware.ContextMiddleware())
	s.App.Use(middleware.StructuredLogger())
	s.App.Use(helmet.New())
	if s.cfg.Env != "test" {
		s.App.Use(limiter.New(limiter.Config{
			Max:        300,
			Expiration: time.Minute,
		}))
	}
	s.App.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	if s.cfg.TracingEnabled {
		s.App.Use(middleware.TracingMiddleware())
	}

	prom := middleware.InitMetrics("bulletin-api")
	prom.RegisterAt(s.App, "/metrics")
	s.App.Use(middleware.MetricsMiddleware(prom))
}

func (s *Server) setupRoutes() {
	s.App.Get("/health", s.handleHealth)
	s.App.Get("/health/live", s.handleLiveness)
	s.App.Get("/health/ready", s.handleReadiness)
	s.App.Get("/status/dashboard", monitor.New())

	auth := s.App.Group("/api/auth")
	auth.Post("/signup", middleware.RateLimit(s.rdb, 5, time.Minute, "signup"), s.handleSignup)
	auth.Post("/login", middleware.RateLimit(s.rdb, 10, time.Minute, "login"), s.handleLogin)

	api := s.App.Group("/api/bulletin", middleware.AuthRequired)
	api.Get("/context", s.handleContext)
	api.Get("/categories", s.handleCategories)
	api.Get("/statuses", s.handleStatuses)
	api.Get("/suggestions", s.handleListSuggestions)
	api.Get("/support", s.handleListSupport)
	api.Get("/owners", s.adminRequired, s.handleOwners)

	api.Post("/requests", middleware.RateLimit(s.rdb, 20, time.Minute, "create-request"), s.handleCreateRequest)
	api.Get("/requests/:id", s.handleGetRequest)
	api.Put("/requests/:id/status", s.handleUpdateStatus)
	api.Put("/requests/:id/description", s.handleUpdateDescription)
	api.Put("/requests/:id/owner", s.handleUpdateOwner)
	api.Get("/requests/:id/comments", s.handleListComments)
	api.Post("/requests/:id/comments", middleware.RateLimit(s.rdb, 30, time.Minute, "create-comment"), s.handleCreateComment)
}

// Listen starts serving on the configured port.
func (s *Server) Listen() error {
	return s.App.Listen(":" + s.cfg.Port)
}

// ShutdownWithTimeout drains in-flight requests before returning.
func (s *Server) ShutdownWithTimeout(timeout time.Duration) error {
	return s.App.ShutdownWithTimeout(timeout)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleLiveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

func (s *Server) handleReadiness(c *fiber.Ctx) error {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// adminRequired rejects non-admin callers before the handler runs.
func (s *Server) adminRequired(c *fiber.Ctx) error {
	isAdmin, err := s.contexts.IsAdmin(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	if !isAdmin {
		return respondError(c, models.NewUnauthorizedError("Admin access required"))
	}
	return c.Next()
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if appErr, ok := err.(*models.AppError); ok {
		switch appErr.Code {
		case models.ErrCodeValidation:
			status = fiber.StatusBadRequest
		case models.ErrCodeNotFound:
			status = fiber.StatusNotFound
		case models.ErrCodeUnauthorized:
			status = fiber.StatusForbidden
		}
	}
	return models.RespondWithError(c, status, err)
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}
