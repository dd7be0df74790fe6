package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/voice-service/internal/cache"
	"github.com/SAP-F-2025/voice-service/internal/config"
	"github.com/SAP-F-2025/voice-service/internal/handlers"
	"github.com/SAP-F-2025/voice-service/internal/migrations"
	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/voice-service/internal/services"
	"github.com/SAP-F-2025/voice-service/internal/utils"
	"github.com/SAP-F-2025/voice-service/internal/validator"
	"github.com/SAP-F-2025/voice-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewDefaultLogger().LogError(err, "Failed to load configuration")
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	if err := run(cfg, logger); err != nil {
		logger.LogError(err, "Server stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger utils.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slogger := utils.ToSlogLogger(logger)

	if cfg.IsProduction() && !cfg.Casdoor.Enabled() {
		return errors.New("CASDOOR_ENDPOINT is required in production")
	}
	validate := validator.New()
	if err := validate.Validate(cfg.Voice); err != nil {
		return fmt.Errorf("invalid voice configuration: %w", err)
	}

	db, err := pkg.InitDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Voice.AutoMigrate {
		if err := migrations.Up(ctx, sqlDB, "postgres"); err != nil {
			return err
		}
		version, err := migrations.Version(ctx, sqlDB, "postgres")
		if err != nil {
			logger.Warn("Could not read database schema version", "error", err)
		} else {
			logger.Info("Database schema up to date", "version", version)
		}
	}

	structureCache := cache.NewNoopStructureCache()
	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, structure cache disabled", "error", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		structureCache = cache.NewRedisStructureCache(redisClient, cfg.Voice.StructureCacheTTL)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	serviceManager := services.NewServiceManager(postgres.NewRepository(db), structureCache, publisher, validate, slogger, services.ManagerConfig{
		Roles: services.RoleConfig{
			StudentRole:    cfg.Voice.StudentRole,
			AuthoringRoles: cfg.Voice.AuthoringRoles,
		},
		OrderPolicy: models.OrderPolicy(cfg.Voice.OrderPolicy),
	})

	var tokenParser handlers.TokenParser
	if cfg.Casdoor.Enabled() {
		tokenParser = handlers.NewCasdoorTokenParser(cfg.Casdoor)
	} else {
		logger.Warn("Casdoor not configured, trusting identity headers")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		utils.RequestID(),
		utils.LoggerMiddleware(logger),
		utils.ContextLogger(logger),
		handlers.AuthMiddleware(tokenParser, logger),
	)
	handlers.NewHandlerManager(serviceManager, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Voice service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
