package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"contenthub/internal/config"
	"contenthub/internal/metrics"
	"contenthub/internal/middleware"
	"contenthub/internal/payment"
	"contenthub/internal/queue"
	"contenthub/internal/repository"
	"contenthub/internal/security"
	"contenthub/internal/service"
	"contenthub/internal/storage"
)

type healthCheck struct {
	name string
	ping func(ctx context.Context) error
}

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	sessions   *service.SessionService
	guard      *service.AccessGuard
	users      *service.UserService
	workspaces *service.WorkspaceService
	contents   *service.ContentService
	payments   *payment.Service
	metrics    *metrics.Metrics
	checks     []healthCheck
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	redisClient *redis.Client,
	store *storage.ObjectStore,
	issuer *security.TokenIssuer,
	m *metrics.Metrics,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	contentRepo := repository.NewContentRepository(db)
	producer := queue.NewProducer(redisClient, cfg.Queue.Stream)

	guard := service.NewAccessGuard(issuer, userRepo, workspaceRepo, contentRepo)
	credentials := service.NewCredentialVerifier(userRepo)

	return HandlerSet{
		log:        log,
		cfg:        cfg,
		sessions:   service.NewSessionService(credentials, issuer, tokenRepo, userRepo, log),
		guard:      guard,
		users:      service.NewUserService(userRepo, log),
		workspaces: service.NewWorkspaceService(workspaceRepo, userRepo, log),
		contents:   service.NewContentService(contentRepo, store, producer, guard, cfg.Content, log),
		payments:   payment.NewService(payment.NewStripeGateway(cfg.Payment.StripeSecretKey), cfg.Payment, log),
		metrics:    m,
		checks: []healthCheck{
			{name: "database", ping: db.Ping},
			{name: "cache", ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		},
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", h.RegisterUser)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)

	protected := v1.Group("")
	protected.Use(middleware.Auth(h.guard))
	protected.GET("/auth/me", h.Me)
	protected.GET("/users/:username", h.GetUser)

	workspaceAccess := middleware.RequireWorkspaceAccess(h.guard, "workspaceId")
	workspaces := protected.Group("/workspaces")
	workspaces.POST("", h.CreateWorkspace)
	workspaces.GET("/owner/:ownerId", h.ListWorkspacesByOwner)
	workspaces.GET("/:workspaceId", h.GetWorkspace)
	workspaces.GET("/:workspaceId/users", workspaceAccess, h.ListWorkspaceUsers)
	workspaces.POST("/:workspaceId/users", h.AddWorkspaceUser)
	workspaces.GET("/:workspaceId/contents", workspaceAccess, h.ListWorkspaceContents)

	contents := protected.Group("/contents")
	contents.POST("", h.UploadContent)
	contents.GET("/mine", h.ListMyContents)
	contents.GET("/:contentId", h.GetContent)
	contents.PUT("/:contentId", h.UpdateContent)
	contents.DELETE("/:contentId", h.DeleteContent)

	protected.POST("/payments/charge", h.Charge)
}
