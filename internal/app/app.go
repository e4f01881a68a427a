package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pressly/goose"
	redisClient "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/sm8ta/webike_workshop_service/internal/adapter/auth"
	httpHandler "github.com/sm8ta/webike_workshop_service/internal/adapter/handler/http"
	"github.com/sm8ta/webike_workshop_service/internal/adapter/logger"
	"github.com/sm8ta/webike_workshop_service/internal/adapter/memory"
	"github.com/sm8ta/webike_workshop_service/internal/adapter/postgres"
	"github.com/sm8ta/webike_workshop_service/internal/adapter/prometheus"
	"github.com/sm8ta/webike_workshop_service/internal/adapter/redis"
	"github.com/sm8ta/webike_workshop_service/internal/config"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
	"github.com/sm8ta/webike_workshop_service/internal/core/services"
)

const migrationsDir = "./internal/adapter/postgres/migrations"

type App struct {
	Config      *config.Container
	Logger      ports.LoggerPort
	DB          *sql.DB
	RedisClient *redisClient.Client
	Inventory   *services.InventoryService
	HTTPRouter  *httpHandler.Router
	server      *http.Server
}

func New(ctx context.Context, cfg *config.Container) (*App, error) {
	// Set logger
	loggerAdapter := logger.NewLoggerAdapter(cfg.App.Env)
	loggerAdapter.Info("Starting the application", map[string]interface{}{
		"app":     cfg.App.Name,
		"env":     cfg.App.Env,
		"storage": cfg.Storage.Driver,
	})

	a := &App{Config: cfg, Logger: loggerAdapter}

	// Storage
	var store ports.Store
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := sql.Open("postgres", cfg.DB.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set migration dialect: %w", err)
		}
		if err := goose.Up(db, migrationsDir); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		a.DB = db
		store = postgres.NewStore(db)
	default:
		loggerAdapter.Warn("Using in-memory storage, data is lost on restart", nil)
		store = memory.NewStore()
	}

	// Cache and change feed
	var (
		cache ports.CachePort
		feed  ports.ChangeFeed
	)
	if cfg.Redis.Address != "" {
		redisConn := redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if _, err := redisConn.Ping(ctx).Result(); err != nil {
			a.closeDB()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.RedisClient = redisConn
		cache = redis.NewRedisAdapter(redisConn)
		feed = redis.NewFeedAdapter(redisConn, loggerAdapter)
	} else {
		cache = memory.NewCache()
		feed = memory.NewFeed(64)
	}

	// Validate
	validate := validator.New()

	// Observability
	metrics := prometheus.NewPrometheusAdapter()

	// Services
	tokenService := httpHandler.NewJWTTokenService(cfg.Token.Secret, cfg.Token.Duration, loggerAdapter)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	workflowService := services.NewWorkflowService(store, loggerAdapter, validate, cache, feed, metrics)
	bikeService := services.NewBikeService(store, loggerAdapter, validate, cache, feed)
	inventoryService := services.NewInventoryService(store, loggerAdapter, validate, cache, feed, cfg.Inventory.Debounce)
	taskService := services.NewTaskService(store, loggerAdapter, validate, cache, feed)
	availabilityService := services.NewAvailabilityService(store, loggerAdapter, validate)
	profileService := services.NewProfileService(store, loggerAdapter, validate, hasher, tokenService)
	reportService := services.NewReportService(store, loggerAdapter)
	settingsService := services.NewSettingsService(loggerAdapter, cache, feed)

	if cfg.Admin.Email != "" {
		if err := profileService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			a.closeConnections()
			return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}

	// Init HTTP router
	router, err := httpHandler.NewRouter(cfg.HTTP, tokenService, httpHandler.Handlers{
		Bike:         httpHandler.NewBikeHandler(bikeService, workflowService, loggerAdapter, metrics),
		Workflow:     httpHandler.NewWorkflowHandler(workflowService, loggerAdapter, metrics),
		Inventory:    httpHandler.NewInventoryHandler(inventoryService, loggerAdapter, metrics),
		Task:         httpHandler.NewTaskHandler(taskService, loggerAdapter, metrics),
		Availability: httpHandler.NewAvailabilityHandler(availabilityService, loggerAdapter, metrics),
		Profile:      httpHandler.NewProfileHandler(profileService, loggerAdapter, metrics),
		Report:       httpHandler.NewReportHandler(reportService, loggerAdapter, metrics),
		Settings:     httpHandler.NewSettingsHandler(settingsService, loggerAdapter, metrics),
		Events:       httpHandler.NewEventsHandler(feed, loggerAdapter, metrics),
	})
	if err != nil {
		a.closeConnections()
		return nil, fmt.Errorf("failed to initialize router: %w", err)
	}

	a.Inventory = inventoryService
	a.HTTPRouter = router
	a.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.HTTP.URL, cfg.HTTP.Port),
		Handler: router.Engine(),
	}
	return a, nil
}

// Run serves HTTP until Stop is called. It returns nil at once when Stop came first.
func (a *App) Run() error {
	a.Logger.Info("Starting HTTP server", map[string]interface{}{
		"addr": a.server.Addr,
	})

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		a.Logger.Error("HTTP server error", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// Stop drains HTTP, writes pending inventory edits and closes connections.
func (a *App) Stop(ctx context.Context) error {
	a.Logger.Info("Shutting down gracefully...", nil)

	if err := a.server.Shutdown(ctx); err != nil {
		a.Logger.Error("HTTP shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if a.Inventory != nil {
		if n := a.Inventory.FlushEdits(); n > 0 {
			a.Logger.Info("Flushed pending inventory edits", map[string]interface{}{
				"count": n,
			})
		}
	}

	a.closeConnections()
	a.Logger.Info("Application stopped successfully", nil)
	return nil
}

func (a *App) closeConnections() {
	a.closeDB()
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Logger.Error("Redis close error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (a *App) closeDB() {
	if a.DB == nil {
		return
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Database close error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
