// @title Formcraft API
// @version 1.0
// @description Build forms from categorize, cloze and comprehension questions and collect responses.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:5000
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "formcraft/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	"formcraft/internal/adapter"
	"formcraft/internal/cache"
	"formcraft/internal/config"
	"formcraft/internal/domain"
	"formcraft/internal/handler"
	"formcraft/internal/logger"
	"formcraft/internal/middleware"
	"formcraft/internal/repository"
	"formcraft/internal/service"
	"formcraft/internal/storage"
	"formcraft/internal/validation"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// Storage
	store, closeStore, err := repository.OpenDocumentStore(startCtx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to open document store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	appLogger.Info("Document store ready", zap.String("driver", cfg.Storage.Driver))

	formRepository := repository.NewFormRepository(store)
	responseRepository := repository.NewResponseRepository(store)

	// Optional form cache
	var formCache domain.Cache
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(startCtx, cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		formCache = adapter.NewRedisCacheAdapter(redisClient)
		formRepository = repository.NewCachedFormRepository(formRepository, formCache, cfg.Redis.FormTTL, cfg.Server.RequestTimeout)
		appLogger.Info("Form cache enabled", zap.String("address", cfg.Redis.Address), zap.Duration("ttl", cfg.Redis.FormTTL))
	}

	images, err := storage.NewLocalImageStore(cfg.Uploads)
	if err != nil {
		appLogger.Fatal("Failed to prepare upload directory", zap.Error(err))
	}

	validator, err := validation.NewValidator()
	if err != nil {
		appLogger.Fatal("Failed to compile request schemas", zap.Error(err))
	}

	// Initialize services
	formService := service.NewFormService(formRepository, images, cfg)
	responseService := service.NewResponseService(formRepository, responseRepository, cfg)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(recover.New())
	app.Use(cors.New())

	app.Static(cfg.Uploads.URLPrefix, cfg.Uploads.Dir)
	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app, handler.Handlers{
		Forms:     handler.NewFormHandler(formService),
		Responses: handler.NewResponseHandler(responseService),
		Health:    handler.NewHealthHandler(cfg.Storage.Driver, formCache),
	}, middleware.NewValidationMiddleware(validator))

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := closeStore(ctx); err != nil {
		appLogger.Error("Failed to close document store", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
