// @title           Site Admin Backend API
// @version         1.0.0
// @description     Admin console backend for site listings: registration, editing, deletion, listings with status counts, image storage and user accounts.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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

	"github.com/gin-gonic/gin"

	"site-admin-backend/internal/cache"
	"site-admin-backend/internal/config"
	"site-admin-backend/internal/database"
	"site-admin-backend/internal/handlers"
	"site-admin-backend/internal/logger"
	"site-admin-backend/internal/server"
	"site-admin-backend/internal/services"
	"site-admin-backend/internal/supabase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Migrations need a direct Postgres connection; runtime traffic goes
	// through the REST API.
	if cfg.Database.URL == "" {
		log.Warn("database.url not set, migrations will be skipped")
	} else {
		migrator, err := database.NewMigrator(cfg.Database.URL, log)
		if err != nil {
			log.Warn("failed to initialize migrator", "err", err)
		} else {
			if err := migrator.Run(ctx); err != nil {
				log.Warn("migration failed", "err", err)
			} else {
				log.Info("migrations completed")
			}
			migrator.Close()
		}
	}

	// Initialize Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatal("failed to initialize supabase client", "err", err)
	}
	storageClient, err := supabase.NewStorageClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey, cfg.Storage.Bucket)
	if err != nil {
		log.Fatal("failed to initialize storage client", "err", err)
	}
	store := supabase.NewDatabaseClient(supabaseClient.Supabase)

	counts := newCountCache(cfg, log)

	// Services
	images := services.NewImageService(store, storageClient, cfg.Storage.Folder, cfg.MaxUploadBytes(), log)
	resolver := services.NewFileURLResolver(store, log)
	registration := services.NewRegistrationService(store, store, counts, log)
	listing := services.NewListingService(store, resolver, counts, log)
	sites := services.NewSiteService(store, store, images, counts, log)
	deletion := services.NewDeletionService(store, store, store, images, counts, log)
	users := services.NewUserService(store, log)

	router := server.NewRouter(server.RouterConfig{
		Config:           cfg,
		Log:              log,
		Authorizer:       users,
		SiteHandler:      handlers.NewSiteHandler(registration, listing, sites, deletion),
		PromotionHandler: handlers.NewPromotionHandler(sites),
		ImageHandler:     handlers.NewImageHandler(images, cfg.MaxUploadBytes()),
		UserHandler:      handlers.NewUserHandler(users),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
	if closer, ok := counts.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

// newCountCache prefers Redis when configured so replicas share counts and
// invalidations, and falls back to process memory.
func newCountCache(cfg *config.Config, log *logger.Logger) services.CountCache {
	if cfg.Cache.RedisAddr == "" {
		return cache.NewMemoryCounts(cfg.Cache.CountTTL)
	}
	rc, err := cache.NewRedisCounts(cfg.Cache.RedisAddr, cfg.Cache.CountTTL, log)
	if err != nil {
		log.Warn("redis unavailable, using in-memory count cache", "addr", cfg.Cache.RedisAddr, "err", err)
		return cache.NewMemoryCounts(cfg.Cache.CountTTL)
	}
	return rc
}
