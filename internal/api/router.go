package api

import (
	"context"
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/openlearn/provisioning/docs"
	"github.com/openlearn/provisioning/internal/api/handler"
	"github.com/openlearn/provisioning/internal/api/middleware"
	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/service"
	mongostore "github.com/openlearn/provisioning/internal/infrastructure/db/mongo"
	redisstore "github.com/openlearn/provisioning/internal/infrastructure/db/redis"
	"github.com/openlearn/provisioning/internal/infrastructure/queue"
	"github.com/openlearn/provisioning/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	users := mongostore.NewUserRepository(db)
	enrollments := mongostore.NewEnrollmentRepository(db)
	catalog := mongostore.NewCatalogRepository(db)
	sites := mongostore.NewSiteRepository(db)
	tx := mongostore.NewTransactor(db.Client())

	tenancy := service.TenancyConfig{
		MultiTenancyEnabled: cfg.Tenancy.MultiTenancyEnabled,
		OriginSources:       cfg.Tenancy.OriginSources,
		RetirementDomain:    cfg.Tenancy.RetirementDomain,
	}

	hasher := service.NewBcryptHasher(bcrypt.DefaultCost)
	accountService := service.NewAccountService(service.AccountDeps{
		Store:    users,
		Tx:       tx,
		Hasher:   hasher,
		Comments: redisstore.NewCommentsRegistrar(rdb),
		Prefs:    redisstore.NewPreferenceStore(rdb),
		Settings: service.NewAccountSettings(users, tx),
	}, tenancy, log)

	lookup, err := service.NewSiteUserResolver(users, tenancy, service.SiteSources(users), log)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	validator := service.NewEnrollmentValidator(catalog, service.NewTenantResolver(tenancy, sites))
	enrollmentService := service.NewEnrollmentService(validator, users, enrollments, catalog, log)
	batch := queue.NewBatchRunner(cfg.Batch.Workers, enrollmentService, users, log)

	authService := service.NewAuthService(users, hasher, cfg.JWTSecret, cfg.TokenTTL)

	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService, lookup)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService, batch, cfg.Batch.MaxSize)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("provisioning"))

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(map[string]handler.Pinger{
		"mongodb": func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
		"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)

	// --- API v1 ---
	v1 := e.Group("/v1", middleware.Auth(cfg.JWTSecret), middleware.Site(sites, log))
	staffOnly := middleware.RBAC(domain.RoleStaff)

	accounts := v1.Group("/accounts")
	accounts.POST("", accountHandler.Create, staffOnly)
	accounts.GET("", accountHandler.Get, staffOnly)
	accounts.PATCH("/:username", accountHandler.Update) // staff or the account owner
	accounts.DELETE("/:username", accountHandler.Deactivate, staffOnly)

	enroll := v1.Group("/enrollments", staffOnly)
	enroll.POST("", enrollmentHandler.Create)
	enroll.POST("/validate", enrollmentHandler.Validate)
	enroll.POST("/batch", enrollmentHandler.Batch)

	return e, nil
}
