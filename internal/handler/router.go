package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shorty/internal/config"
	"shorty/internal/domain"
	"shorty/pkg/logger"
)

// requestTimeout bounds the store round-trips of one request
const requestTimeout = 10 * time.Second

// NewRouter configures the Gin router with middleware and routes
func NewRouter(links *LinkHandler, cfg *config.Config, log *logger.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warnw("Invalid trusted proxies, trusting none", "proxies", cfg.TrustedProxies, "error", err)
		_ = router.SetTrustedProxies(nil)
	}

	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg))
	router.Use(SecurityHeadersMiddleware())
	router.Use(RateLimitMiddleware(cfg.IPRateLimitPerMinute))
	router.Use(TimeoutMiddleware(requestTimeout))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, domain.HealthResponse{
			Status:    "healthy",
			Service:   "shorty",
			Version:   "1.0.0",
			Timestamp: time.Now().UTC(),
		})
	})

	links.Register(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "endpoint not found",
		})
	})

	return router
}
