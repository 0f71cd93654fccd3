// Package server boots the application: configuration, database, cache,
// collaborators, services and routes are constructed here once and passed
// down explicitly. Nothing below this package reaches for global state.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shashiranjanraj/rangershop/app/controllers"
	"github.com/shashiranjanraj/rangershop/app/models"
	"github.com/shashiranjanraj/rangershop/app/repositories"
	"github.com/shashiranjanraj/rangershop/app/routes"
	"github.com/shashiranjanraj/rangershop/app/services"
	"github.com/shashiranjanraj/rangershop/config"
	"github.com/shashiranjanraj/rangershop/pkg/auth"
	"github.com/shashiranjanraj/rangershop/pkg/cache"
	"github.com/shashiranjanraj/rangershop/pkg/database"
	"github.com/shashiranjanraj/rangershop/pkg/event"
	"github.com/shashiranjanraj/rangershop/pkg/imagesearch"
	"github.com/shashiranjanraj/rangershop/pkg/logger"
	"github.com/shashiranjanraj/rangershop/pkg/metrics"
	"github.com/shashiranjanraj/rangershop/pkg/middleware"
	"github.com/shashiranjanraj/rangershop/pkg/migration"
	"github.com/shashiranjanraj/rangershop/pkg/reqid"
	"github.com/shashiranjanraj/rangershop/pkg/response"
	"github.com/shashiranjanraj/rangershop/pkg/router"
	"github.com/shashiranjanraj/rangershop/pkg/schedule"
	"github.com/shashiranjanraj/rangershop/pkg/storage"

	// Register migrations so boot can run pending ones.
	_ "github.com/shashiranjanraj/rangershop/database/migrations"
)

// Server is the fully wired application.
type Server struct {
	log    *slog.Logger
	router *router.Router
	sched  *schedule.Scheduler
	port   string
}

// New loads configuration and wires every component. Pending migrations run
// as part of boot so the schema always matches the binary.
func New() (*Server, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("server: load config: %w", err)
	}

	log := logger.New(config.AppEnv())

	db, err := database.Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return nil, err
	}

	if n, err := migration.New(db).Run(); err != nil {
		return nil, err
	} else if n > 0 {
		log.Info("applied pending migrations", "count", n)
	}

	responseCache, err := cache.Connect(config.RedisAddr(), config.RedisPassword())
	if err != nil {
		// The cache degrades to a no-op; the shop works without it.
		log.Warn("redis unavailable, running without response cache", "error", err)
	}

	disk, err := buildDisk()
	if err != nil {
		return nil, err
	}

	tokens := auth.NewManager(config.JWTSecret(), 24*time.Hour)
	images := imagesearch.New(
		config.ImageSearchURL(),
		config.RapidAPIKey(),
		config.RapidAPIHost(),
		responseCache,
		config.ImageCacheTTL(),
	)

	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)

	events := event.NewBus()
	events.Listen(event.UserRegistered, func(payload interface{}) {
		if user, ok := payload.(models.User); ok {
			log.Info("user registered", "user_id", user.ID, "username", user.Username)
		}
	})
	events.Listen(event.OrderPlaced, func(payload interface{}) {
		if order, ok := payload.(models.Order); ok {
			log.Info("order placed", "order_id", order.ID, "total", order.Total.StringFixed(2))
		}
	})

	authService := services.NewAuthService(userRepo, tokens, events)
	catalogService := services.NewCatalogService(productRepo, images, disk)
	orderService := services.NewOrderService(db, productRepo, events)

	sched := schedule.New(log)
	sched.Every(config.ImageRefreshInterval()).
		Name("catalog.image_refresh").
		WithoutOverlapping().
		Run(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if n, err := catalogService.RefreshPlaceholderImages(ctx); err != nil {
				log.Warn("image refresh failed", "error", err)
			} else if n > 0 {
				log.Info("image refresh replaced placeholders", "count", n)
			}
		})

	r := router.New()
	r.Use(
		metrics.Middleware(),
		reqid.Middleware(),
		middleware.Recovery,
		middleware.Logger(log),
		middleware.CORS(),
	)

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, "ok")
	})

	routes.RegisterAPI(r, routes.Controllers{
		Auth:     controllers.NewAuthController(authService),
		Products: controllers.NewProductController(catalogService),
		Orders:   controllers.NewOrderController(orderService),
	}, tokens)

	return &Server{
		log:    log,
		router: r,
		sched:  sched,
		port:   config.AppPort(),
	}, nil
}

// Router exposes the route table (used by route:list).
func (s *Server) Router() *router.Router {
	return s.router
}

// Start launches the background scheduler and blocks serving HTTP until the
// listener fails.
func (s *Server) Start() error {
	s.sched.Start(context.Background())
	s.log.Info("rangershop listening", "port", s.port)
	return http.ListenAndServe(":"+s.port, s.router.Handler())
}

func buildDisk() (storage.Disk, error) {
	if bucket := config.StorageS3Bucket(); bucket != "" {
		return storage.NewS3(storage.S3Options{
			Bucket:   bucket,
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
	}
	return storage.NewLocal(config.StorageLocalRoot(), config.StorageURL()), nil
}
