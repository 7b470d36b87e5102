package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"site-admin-backend/internal/config"
	"site-admin-backend/internal/handlers"
	"site-admin-backend/internal/logger"
	"site-admin-backend/internal/middleware"
)

type RouterConfig struct {
	Config           *config.Config
	Log              *logger.Logger
	Authorizer       middleware.AdminAuthorizer
	SiteHandler      *handlers.SiteHandler
	PromotionHandler *handlers.PromotionHandler
	ImageHandler     *handlers.ImageHandler
	UserHandler      *handlers.UserHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))
	router.Use(middleware.CORS(cfg.Config.Origins()))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/health", handlers.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ===============
	// || Admin     ||
	// ===============
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.Config))
	api.Use(middleware.RequireAdmin(cfg.Authorizer))

	// Sites
	api.POST("/sites", cfg.SiteHandler.Register)
	api.GET("/sites", cfg.SiteHandler.List)
	api.GET("/sites/counts", cfg.SiteHandler.Counts)
	api.GET("/sites/:site_id", cfg.SiteHandler.Get)
	api.PATCH("/sites/:site_id", cfg.SiteHandler.Update)
	api.DELETE("/sites/:site_id", cfg.SiteHandler.Delete)
	api.GET("/sites/:site_id/deletion-preview", cfg.SiteHandler.PreviewDelete)

	// Promotions
	api.GET("/sites/:site_id/promotions", cfg.PromotionHandler.List)
	api.POST("/sites/:site_id/promotions", cfg.PromotionHandler.Add)
	api.PATCH("/promotions/:promotion_id", cfg.PromotionHandler.Update)
	api.DELETE("/promotions/:promotion_id", cfg.PromotionHandler.Delete)

	// Images
	api.POST("/images", cfg.ImageHandler.Upload)
	api.DELETE("/images/:file_id", cfg.ImageHandler.Delete)

	// Users
	api.GET("/users", cfg.UserHandler.List)
	api.PATCH("/users/:user_id", cfg.UserHandler.Update)

	return router
}
