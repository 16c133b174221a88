package server

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"time"

	"clothing-store/internal/config"
	custommiddleware "clothing-store/internal/middleware"
	"clothing-store/internal/repository"
	"clothing-store/internal/service"
	"clothing-store/internal/storage"
	"clothing-store/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, db *sql.DB) (*Server, error) {
	proxies, err := custommiddleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack(proxies)...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			custommiddleware.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
			return
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	images, err := newImageStore(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Repositories
	userRepo := repository.NewUserRepository(db)
	cartRepo := repository.NewCartRepository(db)
	tagRepo := repository.NewTagRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	inventoryRepo := repository.NewInventoryLogRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// Services
	userService := service.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.SessionDuration())
	cartService := service.NewCartService(cartRepo)
	tagService := service.NewTagService(tagRepo)
	productService := service.NewProductService(productRepo, images, logger)
	orderService := service.NewOrderService(orderRepo, productRepo)
	reviewService := service.NewReviewService(reviewRepo, orderRepo, userRepo, images, logger)
	inventoryService := service.NewInventoryService(inventoryRepo)
	dashboardService := service.NewDashboardService(dashboardRepo)

	if err := userService.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	auth := custommiddleware.AuthMiddleware(userService, cfg.JWT.CookieName, logger)
	admin := custommiddleware.RequireAdmin(logger)
	limiter := custommiddleware.RateLimit(redisClient, custommiddleware.RateLimitConfig{
		Limit:  cfg.RateLimit.RequestsPerWindow,
		Window: time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		Prefix: "ratelimit:auth",
	}, logger)

	cookie := transport.SessionCookie{
		Name:   cfg.JWT.CookieName,
		TTL:    cfg.JWT.SessionDuration(),
		Secure: cfg.JWT.SecureCookie,
	}

	transport.NewUserHandler(userService, cookie, logger).RegisterRoutes(router, auth, admin, limiter)
	transport.NewCartHandler(cartService, logger).RegisterRoutes(router, auth)
	transport.NewTagHandler(tagService, logger).RegisterRoutes(router, auth, admin)
	transport.NewProductHandler(productService, logger).RegisterRoutes(router, auth, admin)
	transport.NewOrderHandler(orderService, logger).RegisterRoutes(router, auth, admin)
	transport.NewReviewHandler(reviewService, logger).RegisterRoutes(router, auth, admin)
	transport.NewInventoryHandler(inventoryService, logger).RegisterRoutes(router, auth, admin)
	transport.NewDashboardHandler(dashboardService, logger).RegisterRoutes(router, auth, admin)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}, nil
}

func newImageStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.ImageStore, error) {
	switch cfg.Driver {
	case config.StorageDriverMemory:
		logger.Warn("Keeping images in process memory; they are lost on restart")
		return storage.NewMemoryStore(cfg.PublicBaseURL), nil
	case config.StorageDriverMinio:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("storage driver %q needs STORAGE_ENDPOINT", cfg.Driver)
		}
		return storage.NewMinioStore(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
