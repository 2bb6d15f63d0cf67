package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/formacode/course-service/internal/auth"
	"github.com/formacode/course-service/internal/cache"
	"github.com/formacode/course-service/internal/config"
	"github.com/formacode/course-service/internal/games"
	"github.com/formacode/course-service/internal/handlers"
	"github.com/formacode/course-service/internal/models"
	"github.com/formacode/course-service/internal/repositories/postgres"
	"github.com/formacode/course-service/internal/services"
	"github.com/formacode/course-service/internal/utils"
	"github.com/formacode/course-service/internal/validator"
	"github.com/formacode/course-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := utils.NewDefaultLogger()
	if cfg.Environment != "production" {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&models.Course{}, &models.Module{}, &models.Item{}, &models.Chapter{}); err != nil {
		logger.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("event publisher setup failed", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	cacheService := cache.NewRedisCache(redisClient, logger)
	registry := games.NewDefaultRegistry(logger)
	v := validator.New()

	syncService := services.NewSyncService(repo, v, registry, publisher, cacheService, services.DefaultSyncPolicy(), logger)
	outlineService := services.NewOutlineService(syncService, logger)
	playService := services.NewPlayService(repo, registry, publisher, logger)

	authenticator := auth.NewAuthenticator(cfg.Casdoor, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(syncService, outlineService, playService, logger)
	handlerManager.SetupRoutes(router, authenticator)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}
