// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"weave/internal/bootstrap"
	"weave/internal/config"
	"weave/internal/feed"
	"weave/internal/graph"
	"weave/internal/middleware"
	"weave/internal/models"
	"weave/internal/notifications"
	"weave/internal/observability"
	"weave/internal/recommend"
	"weave/internal/repository"
	"weave/internal/search"
	"weave/internal/service"
	"weave/internal/thread"
	"weave/internal/txn"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo      repository.UserRepository
	followRepo    repository.FollowRepository
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	communityRepo repository.CommunityRepository
	notifRepo     repository.NotificationRepository

	index    *search.Index
	notifier *notifications.Notifier

	userService      *service.UserService
	followService    *service.FollowService
	postService      *service.PostService
	commentService   *service.CommentService
	communityService *service.CommunityService
	discoveryService *service.DiscoveryService
	feedService      *service.FeedService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{
		SeedDemoData: cfg.SeedDemoData,
	})
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// Initialize Prometheus metrics
	prom := middleware.InitMetrics("weave-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		followRepo:     followRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		communityRepo:  communityRepo,
		notifRepo:      notifRepo,
		index:          search.NewIndex(),
	}

	// Notifier is fail-open: a nil Redis client disables pub/sub delivery
	// without affecting persisted notifications.
	server.notifier = notifications.NewNotifier(redisClient)

	// Analytical components, with policy knobs from config
	walker := graph.NewWalker(followRepo, cfg.GraphMaxDepth)
	engine := recommend.NewEngine(followRepo, postRepo, cfg)
	builder := thread.NewBuilder(commentRepo, cfg.ThreadMaxDepth)
	ranker := feed.NewRanker(postRepo, commentRepo, communityRepo, cfg.FeedRecentWindowDays)
	coordinator := txn.NewCoordinator(db, cfg.TxnMaxRetries,
		time.Duration(cfg.TxnRetryBackoffMs)*time.Millisecond)

	server.userService = service.NewUserService(userRepo, server.index)
	server.followService = service.NewFollowService(followRepo, userRepo, notifRepo, walker, server.notifier)
	server.postService = service.NewPostService(postRepo, followRepo, notifRepo, coordinator, server.index, server.notifier)
	server.commentService = service.NewCommentService(commentRepo, postRepo, builder)
	server.communityService = service.NewCommunityService(communityRepo, userRepo, coordinator, server.notifier)
	server.discoveryService = service.NewDiscoveryService(engine, server.index, userRepo)
	server.feedService = service.NewFeedService(ranker, userRepo)

	return server, nil
}

// WarmSearchIndex loads existing posts and users into the in-memory search
// index. Call once after construction, before serving search traffic.
func (s *Server) WarmSearchIndex(ctx context.Context) error {
	const batch = 500

	var posts, users int
	for offset := 0; ; offset += batch {
		page, err := s.userRepo.List(ctx, batch, offset)
		if err != nil {
			return fmt.Errorf("warm users: %w", err)
		}
		for i := range page {
			s.index.IndexUser(&page[i])
		}
		users += len(page)
		if len(page) < batch {
			break
		}
	}

	rows, err := s.postRepo.ListWithEngagement(ctx, nil, 0)
	if err != nil {
		return fmt.Errorf("warm posts: %w", err)
	}
	for _, p := range rows {
		s.index.IndexPost(p)
	}
	posts = len(rows)

	log.Printf("Search index warmed: %d users, %d posts", users, posts)
	return nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	// Backwards-compatible legacy route: map /health to readiness (keeps existing scripts working)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Weave Backend Metrics Dashboard",
	}))

	// Public user registration
	api.Post("/users", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.RegisterUser)

	// Public search routes
	searchRoutes := api.Group("/search")
	searchRoutes.Get("/posts", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.SearchPosts)
	searchRoutes.Get("/users", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.SearchUsers)
	searchRoutes.Get("/all", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.SearchAll)
	searchRoutes.Get("/boolean", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.SearchBoolean)

	// Public community browse
	publicCommunities := api.Group("/communities")
	publicCommunities.Get("/", s.ListCommunities)
	publicCommunities.Get("/stats", s.GetAllCommunityStats)
	publicCommunities.Get("/:id/stats", s.GetCommunityStats)
	publicCommunities.Get("/:id/members", s.ListCommunityMembers)
	publicCommunities.Get("/:id", s.GetCommunity)

	// Public post browse
	publicPosts := api.Group("/posts")
	publicPosts.Get("/popular", s.GetPopularPosts)
	publicPosts.Get("/:id/thread", s.GetCommentThread)
	publicPosts.Get("/:id", s.GetPost)

	// Public comment ancestry
	api.Get("/comments/:id/ancestors", s.GetCommentAncestors)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes. Specific /:id/:resource routes BEFORE generic /:id route.
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/:id/activity", s.GetUserActivity)
	users.Get("/:id/distance", s.GetSocialDistance)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id", s.GetUserProfile)
	users.Delete("/:id", s.DeleteUser)

	// Follow lifecycle
	follows := protected.Group("/follows")
	follows.Get("/requests", s.GetPendingFollowRequests)
	follows.Post("/requests/:userId/accept", s.AcceptFollowRequest)
	follows.Post("/requests/:userId/reject", s.RejectFollowRequest)
	follows.Post("/:userId", middleware.RateLimit(
		s.redis, 20, 5*time.Minute, "follow_request"), s.SendFollowRequest)
	follows.Delete("/:userId", s.Unfollow)

	// Discovery
	protected.Get("/recommendations", s.GetRecommendations)
	protected.Get("/feed", s.GetFeed)

	// Protected post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/share", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.ShareAndNotify)
	posts.Post("/batch", middleware.RateLimit(
		s.redis, 3, 5*time.Minute, "batch_post"), s.BatchCreatePosts)
	// Specific /:id/:resource routes BEFORE generic /:id route
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	posts.Delete("/:id", s.DeletePost)

	protected.Delete("/comments/:id", s.DeleteComment)

	// Community membership
	communities := protected.Group("/communities")
	communities.Post("/", s.CreateCommunity)
	communities.Post("/:id/join", s.JoinCommunity)
	communities.Post("/:id/leave", s.LeaveCommunity)
	communities.Put("/:id/members/:userId/role", s.SetCommunityMemberRole)

	// Notification inbox
	notifs := protected.Group("/notifications")
	notifs.Get("/", s.GetNotifications)
	notifs.Get("/unread-count", s.GetUnreadNotificationCount)
	notifs.Post("/:id/read", s.MarkNotificationRead)
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: caching and pub/sub degrade gracefully without it.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, err := s.parseToken(c.Context(), tokenString)
		if err != nil {
			return models.RespondWithError(c, err)
		}

		// Store user ID in context
		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// parseToken validates a JWT and extracts the acting user id from its subject
// claim. Token issuance lives in the upstream identity service; this API
// only consumes session tokens.
func (s *Server) parseToken(ctx context.Context, tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid subject claim")
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid user ID in token")
	}

	// Check JTI for revocation
	if jti, exists := claims["jti"].(string); exists && jti != "" {
		if s.redis != nil {
			isBlacklisted, err := s.redis.Exists(ctx, "blacklist:"+jti).Result()
			if err == nil && isBlacklisted > 0 {
				return 0, models.NewUnauthorizedError("Token has been revoked")
			}
		}
	}

	return uint(userID), nil
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Weave API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if err := s.WarmSearchIndex(ctx); err != nil {
		log.Printf("search index warm-up failed: %v", err)
	}

	// Observe every delivered notification event for the lifetime of the
	// server. The subscriber stops when the shutdown context is canceled.
	if err := s.notifier.StartPatternSubscriber(ctx, func(channel, _ string) {
		kind := "user"
		if channel == notifications.BroadcastChannel {
			kind = "broadcast"
		}
		observability.NotificationDeliveries.WithLabelValues(kind).Inc()
	}); err != nil {
		log.Printf("notification subscriber failed to start: %v", err)
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop background goroutines
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	// Shutdown the HTTP server
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
