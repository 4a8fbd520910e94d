package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/blog-website/internal/api"
	"github.com/dom/blog-website/internal/config"
	"github.com/dom/blog-website/internal/logger"
	"github.com/dom/blog-website/internal/repository/postgres"
	"github.com/dom/blog-website/internal/security"
	"github.com/dom/blog-website/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	hasher := security.NewHasher(security.HashParams{
		TimeCost:    cfg.HashTimeCost,
		MemoryKiB:   cfg.HashMemoryKiB,
		Parallelism: cfg.HashParallelism,
	}, cfg.HashPepper)

	signer := security.NewTokenSigner(cfg.JWTIssuer, cfg.JWTAudience,
		security.SignerConfig{Secret: cfg.AccessTokenSecret, TTL: cfg.AccessTokenTTL},
		security.SignerConfig{Secret: cfg.RefreshTokenSecret, TTL: cfg.RefreshTokenTTL},
	)

	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	repos := postgres.NewRepositories(db, hasher, zlog)
	services := service.NewServices(repos, hasher, signer, zlog)
	router := api.NewRouter(services, zlog)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server stopped")
}
