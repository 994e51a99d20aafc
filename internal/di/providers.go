// Package di wires the object graph. Providers are plain functions so wire
// can assemble them; wire_gen.go holds the generated initializers.
package di

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"go-commerce-service/internal/app"
	"go-commerce-service/internal/config"
	"go-commerce-service/internal/database"
	"go-commerce-service/internal/http/handler"
	"go-commerce-service/internal/http/middleware"
	"go-commerce-service/internal/http/router"
	"go-commerce-service/internal/observability"
	"go-commerce-service/internal/repository"
	"go-commerce-service/internal/security"
	"go-commerce-service/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(provideLogger)

var InfraSet = wire.NewSet(provideOpenDB, provideRedisClient, provideHTTPClient)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewSessionRepository,
	repository.NewProductRepository,
	repository.NewCartRepository,
)

var SecuritySet = wire.NewSet(provideJWTManager, provideCookieManager)

var ServiceSet = wire.NewSet(
	provideAuthConfig,
	provideMailer,
	provideGoogleVerifier,
	provideStorageService,
	provideChatService,
	provideAuthService,
	provideUserService,
	provideCatalogService,
	provideCartService,
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewOAuthHandler,
	handler.NewUserHandler,
	handler.NewProductHandler,
	handler.NewCartHandler,
	handler.NewChatHandler,
	middleware.NewAuthenticator,
	provideAuthRateLimiter,
	provideRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

func provideLogger(cfg *config.Config) *slog.Logger {
	logger := observability.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

// provideRedisClient is nil when REDIS_URL is unset; the rate limiter then
// falls back to its in-process window.
func provideRedisClient(cfg *config.Config, logger *slog.Logger) (redis.UniversalClient, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	logger.Info("redis rate limiting enabled", "addr", opts.Addr)
	return redis.NewClient(opts), nil
}

func provideHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
}

func provideCookieManager(cfg *config.Config) *security.CookieManager {
	return security.NewCookieManager(cfg.CookieSecure)
}

func provideAuthConfig(cfg *config.Config) service.AuthConfig {
	return service.AuthConfig{
		AccessTTL:       cfg.JWTAccessTTL,
		RefreshTTL:      cfg.JWTRefreshTTL,
		ResetTTL:        cfg.ResetTokenTTL,
		VerifyTTL:       cfg.VerifyTokenTTL,
		FrontendBaseURL: cfg.FrontendBaseURL,
		BackendBaseURL:  cfg.BackendBaseURL,
	}
}

func provideMailer(cfg *config.Config, logger *slog.Logger) (service.Mailer, error) {
	if cfg.SMTPConfigured() {
		return service.NewSMTPMailer(service.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}
	logger.Warn("smtp not configured, mail links will only be logged")
	return service.NewDevMailer(logger), nil
}

func provideGoogleVerifier(client *http.Client, cfg *config.Config) service.GoogleVerifier {
	return service.NewGoogleVerifier(client, cfg.GoogleClientID)
}

func provideStorageService(cfg *config.Config, logger *slog.Logger) (service.StorageService, error) {
	if !cfg.MinIOConfigured() {
		logger.Warn("object storage not configured, avatar uploads disabled")
		return service.DisabledStorageService{}, nil
	}
	return service.NewMinIOStorageService(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
}

func provideChatService(client *http.Client, cfg *config.Config) service.ChatService {
	return service.NewChatService(client, cfg.ChatEndpoint, cfg.ChatAPIKey, cfg.ChatModel)
}

func provideAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	jwtMgr *security.JWTManager,
	verifier service.GoogleVerifier,
	mailer service.Mailer,
	authCfg service.AuthConfig,
	logger *slog.Logger,
) service.AuthServiceInterface {
	return service.NewAuthService(users, sessions, jwtMgr, verifier, mailer, authCfg, logger)
}

func provideUserService(users repository.UserRepository, sessions repository.SessionRepository) service.UserServiceInterface {
	return service.NewUserService(users, sessions)
}

func provideCatalogService(products repository.ProductRepository) service.CatalogServiceInterface {
	return service.NewCatalogService(products)
}

func provideCartService(cart repository.CartRepository, products repository.ProductRepository) service.CartServiceInterface {
	return service.NewCartService(cart, products)
}

func provideAuthRateLimiter(cfg *config.Config, redisClient redis.UniversalClient, jwtMgr *security.JWTManager, logger *slog.Logger) *middleware.RateLimiter {
	keyFunc := middleware.SubjectOrIPKeyFunc(jwtMgr)
	if redisClient != nil {
		limiter := middleware.NewRedisFixedWindowLimiter(redisClient, "auth")
		return middleware.NewDistributedRateLimiter(limiter, cfg.AuthRateLimitPerMin, time.Minute, middleware.FailOpen, keyFunc, logger)
	}
	return middleware.NewDistributedRateLimiter(middleware.NewLocalFixedWindowLimiter(), cfg.AuthRateLimitPerMin, time.Minute, middleware.FailClosed, keyFunc, logger)
}

func provideRouter(
	authHandler *handler.AuthHandler,
	oauthHandler *handler.OAuthHandler,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	chatHandler *handler.ChatHandler,
	authenticator *middleware.Authenticator,
	authRate *middleware.RateLimiter,
) http.Handler {
	return router.New(router.Deps{
		Auth:     authHandler,
		OAuth:    oauthHandler,
		User:     userHandler,
		Product:  productHandler,
		Cart:     cartHandler,
		Chat:     chatHandler,
		AuthGate: authenticator,
		AuthRate: authRate,
	})
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// MigrationRunner opens the database and applies the schema, for the
// `migrate` subcommand.
type MigrationRunner struct {
	db *gorm.DB
}

func NewMigrationRunner(db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

func (m *MigrationRunner) Run() error {
	return database.Migrate(m.db)
}
