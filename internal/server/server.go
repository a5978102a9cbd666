// Package server contains the HTTP handlers and routing for the Vecinu API.
package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	_ "vecinu/docs" // swagger docs
	"vecinu/internal/config"
	"vecinu/internal/database"
	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/service"
	"vecinu/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// bodyLimit leaves room for a 5MB image plus multipart framing.
const bodyLimit = 6 * 1024 * 1024

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config        *config.Config
	DB            *gorm.DB
	Redis         *redis.Client
	Services      *service.Services
	Authenticator middleware.Authenticator
	// Media, when set, is served under /media for deployments without S3.
	Media *storage.MemoryStore
}

// Server holds all dependencies and provides handlers.
type Server struct {
	config  *config.Config
	db      *gorm.DB
	redis   *redis.Client
	svc     *service.Services
	auth    middleware.Authenticator
	limiter *middleware.RateLimiter
	media   *storage.MemoryStore
	app     *fiber.App
	started time.Time
}

// New builds the server and its fiber app.
func New(d Deps) *Server {
	s := &Server{
		config:  d.Config,
		db:      d.DB,
		redis:   d.Redis,
		svc:     d.Services,
		auth:    d.Authenticator,
		limiter: middleware.NewRateLimiter(d.Redis, d.Config.RateLimitEnabled),
		media:   d.Media,
		started: time.Now(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "Vecinu API",
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler,
	})
	s.SetupMiddleware(s.app)
	s.SetupRoutes(s.app)
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware configures the global middleware chain.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New(recover.Config{EnableStackTrace: !s.config.IsProduction()}))
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	middleware.InitMetrics(app, "vecinu-api")

	app.Use(helmet.New(helmet.Config{
		// Images are loaded cross-origin by the web client.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = s.config.AppURL
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: !strings.Contains(origins, "*"),
		MaxAge:           86400,
	}))
	app.Use(compress.New())
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)
	if !s.config.IsProduction() {
		app.Get("/monitor", monitor.New(monitor.Config{Title: "Vecinu API"}))
	}
	if s.media != nil {
		app.Get("/media/*", s.ServeMedia)
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Use(s.limiter.Handler(middleware.APIRateLimit))
	if !s.config.IsDevLike() {
		api.Use(middleware.OriginGuard(s.config.AppURL))
	}

	requireAuth := middleware.AuthRequired(s.auth)
	optionalAuth := middleware.OptionalAuth(s.auth)
	moderator := middleware.RequireModerator()

	auth := api.Group("/auth")
	authLimit := s.limiter.Handler(middleware.AuthRateLimit)
	auth.Post("/register", authLimit, s.Register)
	auth.Post("/login", authLimit, s.Login)
	auth.Post("/resend-verification", authLimit, s.ResendVerification)
	auth.Post("/logout", requireAuth, s.Logout)
	auth.Get("/me", requireAuth, s.Me)

	api.Get("/neighborhoods", s.ListNeighborhoods)

	// Group middleware matches by plain prefix, which would also catch /users.
	me := api.Group("/user")
	me.Post("/select-neighborhood", requireAuth, s.SelectNeighborhood)
	me.Get("/settings", requireAuth, s.GetSettings)
	me.Patch("/settings", requireAuth, s.UpdateSettings)
	me.Patch("/profile", requireAuth, s.UpdateProfile)

	users := api.Group("/users")
	users.Get("/:id/posts", optionalAuth, s.GetUserPosts)
	users.Get("/:id", s.GetUserProfile)

	posts := api.Group("/posts")
	posts.Get("/", optionalAuth, s.GetFeed)
	posts.Post("/", requireAuth, s.limiter.Handler(middleware.PostRateLimit), s.CreatePost)
	// Specific routes before the generic /:id.
	posts.Get("/saved", requireAuth, s.GetSavedPosts)
	posts.Patch("/:id/sold", requireAuth, s.ToggleSold)
	posts.Post("/:id/images", requireAuth, s.UploadPostImage)
	posts.Delete("/:id/images/:imageId", requireAuth, s.DeletePostImage)
	posts.Post("/:id/save", requireAuth, s.SavePost)
	posts.Delete("/:id/save", requireAuth, s.UnsavePost)
	posts.Get("/:id", optionalAuth, s.GetPost)
	posts.Patch("/:id", requireAuth, s.UpdatePost)
	posts.Delete("/:id", requireAuth, s.DeletePost)

	comments := api.Group("/comments")
	comments.Get("/", optionalAuth, s.GetComments)
	comments.Post("/", requireAuth, s.limiter.Handler(middleware.CommentRateLimit), s.CreateComment)
	comments.Get("/:id/replies", s.GetReplies)
	comments.Patch("/:id", requireAuth, s.UpdateComment)
	comments.Delete("/:id", requireAuth, s.DeleteComment)

	api.Get("/search", optionalAuth, s.SearchPosts)
	api.Post("/reports", requireAuth, s.SubmitReport)

	notifications := api.Group("/notifications", requireAuth)
	notifications.Get("/", s.GetNotifications)
	notifications.Post("/read-all", s.MarkAllNotificationsRead)
	notifications.Patch("/:id/read", s.MarkNotificationRead)

	admin := api.Group("/admin", requireAuth, moderator)
	admin.Get("/stats", s.AdminStats)
	admin.Get("/reports", s.AdminListReports)
	admin.Get("/reports/:id", s.AdminGetReport)
	admin.Patch("/reports/:id", s.AdminResolveReport)
	admin.Get("/posts", s.AdminListPosts)
	admin.Patch("/posts/:id", s.AdminModeratePost)
	admin.Patch("/comments/:id", s.AdminModerateComment)
	admin.Get("/users", s.AdminListUsers)
	admin.Patch("/users/:id", s.AdminModerateUser)
	admin.Get("/audit-logs", s.AdminListAuditLogs)
}

// HealthCheck reports database and redis reachability.
// @Summary Health check
// @Tags ops
// @Produce json
// @Success 200 {object} object{status=string,checks=object}
// @Failure 503 {object} object{status=string,checks=object}
// @Router /health [get]
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unavailable"
	} else if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overall,
		"version": Version,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// ServeMedia serves images held by the in-memory object store.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	key := strings.TrimPrefix(c.Params("*"), "/")
	obj, found := s.media.Get(key)
	if !found {
		return fail(c, models.NewNotFoundError("Media", nil))
	}
	c.Set(fiber.HeaderContentType, obj.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.Send(obj.Data)
}

// Listen starts serving on the configured port.
func (s *Server) Listen() error {
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
