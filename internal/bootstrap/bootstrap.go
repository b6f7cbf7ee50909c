// Package bootstrap builds the application graph from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/footlink/internal/app/auth"
	appControllers "github.com/yigit/footlink/internal/app/controllers"
	appMigrations "github.com/yigit/footlink/internal/app/migrations"
	appRepos "github.com/yigit/footlink/internal/app/repositories"
	"github.com/yigit/footlink/internal/app/repositories/memory"
	"github.com/yigit/footlink/internal/app/repositories/postgres"
	"github.com/yigit/footlink/internal/app/repositories/remote"
	appRoutes "github.com/yigit/footlink/internal/app/routes"
	appServices "github.com/yigit/footlink/internal/app/services"
	"github.com/yigit/footlink/internal/config"
	"github.com/yigit/footlink/internal/db"
	appMiddleware "github.com/yigit/footlink/internal/middleware"
	pkgAuth "github.com/yigit/footlink/internal/pkg/auth"
	"github.com/yigit/footlink/internal/pkg/cache"
	"github.com/yigit/footlink/internal/pkg/filestorage"
	"github.com/yigit/footlink/internal/pkg/helpers"
	"github.com/yigit/footlink/internal/pkg/logger"
	"github.com/yigit/footlink/internal/pkg/metrics"
	"github.com/yigit/footlink/internal/pkg/websocket"
)

// localCacheBytes bounds the in-process cache used when redis is disabled
const localCacheBytes = 64 << 20

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	Cache       cache.Client
	FileStorage filestorage.FileStorage
	Hub         *websocket.Hub
	JWTService  *pkgAuth.JWTService
	Authz       *appAuth.AuthorizationService

	AuthService        appServices.AuthService
	UserService        appServices.UserService
	PostService        appServices.PostService
	ConnectionService  appServices.ConnectionService
	OpportunityService appServices.OpportunityService
	EventService       appServices.EventService
	MessageService     appServices.MessageService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	AuthLimiter    *appMiddleware.RateLimiter
	Logger         zerolog.Logger
}

// Close releases cache and storage resources
func (d *Dependencies) Close() {
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close cache client")
		}
	}
	if d.Repos != nil {
		d.Repos.Shutdown()
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  strings.EqualFold(cfg.Logging.Format, "text"),
		Service: "footlink",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the storage backend selected by storage.driver.
// For postgres the pending migrations are applied first.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pg, err := ConnectDatabase(ctx, cfg, lgr)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, cfg, pg, lgr); err != nil {
			pg.Close()
			return nil, err
		}
		return postgres.NewRepositories(pg), nil

	case config.StorageRemote:
		client := remote.NewClient(remote.Config{
			BaseURL:             cfg.Remote.BaseURL,
			APIKey:              cfg.Remote.APIKey,
			Timeout:             helpers.ParseDuration(cfg.Remote.Timeout, 10*time.Second),
			BreakerMinRequests:  uint32(cfg.Remote.BreakerMinReqs),
			BreakerFailureRatio: cfg.Remote.BreakerFailRate,
			BreakerTimeout:      helpers.ParseDuration(cfg.Remote.BreakerTimeout, 30*time.Second),
		}, lgr)
		lgr.Info().Str("baseURL", cfg.Remote.BaseURL).Msg("Using remote storage backend")
		return remote.NewRepositories(client), nil

	default:
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		return memory.NewRepositories(), nil
	}
}

// ConnectDatabase establishes the database connection.
func ConnectDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("Establishing database connection...")
	pg, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return pg, nil
}

// RunMigrations applies the SQL files of database.migrations_dir.
func RunMigrations(ctx context.Context, cfg *config.Config, pg *db.PostgresDB, lgr zerolog.Logger) error {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); err != nil {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(pg.Pool, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	return nil
}

// SetupCache connects to redis when enabled and falls back to an in-process cache otherwise.
func SetupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (cache.Client, error) {
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache connected")
		return client, nil
	}

	client, err := cache.NewLocal(localCacheBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create local cache: %w", err)
	}
	return client, nil
}

// SetupFileStorage creates the media store selected by media.driver.
func SetupFileStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (filestorage.FileStorage, error) {
	if cfg.Media.Driver == config.MediaMinIO {
		store, err := filestorage.NewMinIOStorage(ctx, filestorage.MinIOConfig{
			Endpoint:  cfg.Media.MinIO.Endpoint,
			AccessKey: cfg.Media.MinIO.AccessKey,
			SecretKey: cfg.Media.MinIO.SecretKey,
			Bucket:    cfg.Media.MinIO.Bucket,
			UseSSL:    cfg.Media.MinIO.UseSSL,
			PublicURL: cfg.Media.MinIO.PublicURL,
		}, lgr)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize minio storage: %w", err)
		}
		return store, nil
	}

	store, err := filestorage.NewLocalStorage(cfg.Media.LocalPath, PublicURL(cfg))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	return store, nil
}

// PublicURL is the externally visible base URL of the server
func PublicURL(cfg *config.Config) string {
	if cfg.Server.PublicURL != "" {
		return strings.TrimRight(cfg.Server.PublicURL, "/")
	}
	return "http://localhost:" + cfg.Server.Port
}

// BuildDependencies initializes services, controllers and middleware on top of the given backends.
func BuildDependencies(
	cfg *config.Config,
	repos *appRepos.Repositories,
	cacheClient cache.Client,
	fileStorage filestorage.FileStorage,
	lgr zerolog.Logger,
) (*Dependencies, error) {
	deps := &Dependencies{
		Repos:       repos,
		Cache:       cacheClient,
		FileStorage: fileStorage,
		Logger:      lgr,
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.Authz = appAuth.NewAuthorizationService(repos.ConnectionRepository, repos.MessageRepository)
	deps.Hub = websocket.NewHub(lgr)

	deps.AuthService = appServices.NewAuthService(repos.UserRepository, deps.JWTService, lgr)
	deps.UserService = appServices.NewUserService(
		repos.UserRepository,
		deps.Authz,
		fileStorage,
		cacheClient,
		helpers.ParseDuration(cfg.Scouting.CacheTTL, time.Hour),
		lgr,
	)
	deps.ConnectionService = appServices.NewConnectionService(
		repos.ConnectionRepository,
		repos.UserRepository,
		deps.Authz,
		appRepos.DefaultSuggestionLimit,
		lgr,
	)
	deps.PostService = appServices.NewPostService(repos, deps.ConnectionService, fileStorage, lgr)
	deps.OpportunityService = appServices.NewOpportunityService(repos.OpportunityRepository, lgr)
	deps.EventService = appServices.NewEventService(repos.EventRepository, lgr)
	deps.MessageService = appServices.NewMessageService(
		repos.MessageRepository,
		repos.UserRepository,
		deps.Authz,
		deps.Hub,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	if cfg.RateLimit.Enabled {
		deps.AuthLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	deps.Controllers = appRoutes.Controllers{
		Auth:        appControllers.NewAuthController(deps.AuthService, lgr),
		User:        appControllers.NewUserController(deps.UserService, lgr),
		Post:        appControllers.NewPostController(deps.PostService, lgr),
		Connection:  appControllers.NewConnectionController(deps.ConnectionService, lgr),
		Opportunity: appControllers.NewOpportunityController(deps.OpportunityService, lgr),
		Event:       appControllers.NewEventController(deps.EventService, lgr),
		Message: appControllers.NewMessageController(
			deps.MessageService,
			websocket.NewHandler(deps.Hub, cfg.CORS.AllowedOrigins, lgr),
			lgr,
		),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production":
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr), appMiddleware.Metrics())
	router.MaxMultipartMemory = cfg.Media.MaxUploadBytes

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.AuthLimiter)

	router.GET(cfg.Server.MetricsPath, gin.WrapH(metrics.Handler()))

	if cfg.Media.Driver == config.MediaLocal {
		router.Static(filestorage.URLPrefix, cfg.Media.LocalPath)
		lgr.Info().Str("path", cfg.Media.LocalPath).Msg("Static file serving configured for uploads directory")
	}

	return router
}
