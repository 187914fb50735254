package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sujalbistaa/bookit/internal/analytics"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/catalog"
	"github.com/sujalbistaa/bookit/internal/config"
	"github.com/sujalbistaa/bookit/internal/content"
	"github.com/sujalbistaa/bookit/internal/db"
	routes "github.com/sujalbistaa/bookit/internal/http"
	"github.com/sujalbistaa/bookit/internal/logger"
	"github.com/sujalbistaa/bookit/internal/moderation"
	"github.com/sujalbistaa/bookit/internal/orders"
	"github.com/sujalbistaa/bookit/internal/users"
)

func main() {
	cfg, envFileLoaded, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel, cfg.Env)
	defer log.Sync()
	if !envFileLoaded {
		log.Info("No .env file found, reading from environment")
	}

	database, err := db.Open(cfg.DatabaseURL, db.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	log.Info("Running database migrations")
	if err := db.Migrate(database); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatal("JWT_SECRET must be set", zap.Error(err))
	}

	env := &routes.Env{
		Auth:       auth.NewService(database, tokens, log),
		Users:      users.NewService(database, log),
		Content:    content.NewService(database, log),
		Catalog:    catalog.NewService(database, log),
		Orders:     orders.NewService(database, log),
		Moderation: moderation.NewService(database, log),
		Analytics:  analytics.NewService(database, log),
		Log:        log,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	routes.SetupRoutes(ctx, router, env, routes.Options{
		CORSOrigins:    cfg.CORSOrigins(),
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateWindow: cfg.AuthRateWindow,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := database.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server exiting")
}
