package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/health"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/metrics"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/middleware"
)

// RouterConfig holds everything the HTTP router needs.
type RouterConfig struct {
	ServiceName  string
	QuoteHandler *QuoteHandler
	Metrics      *metrics.Recorder
	// Gatherer is exposed on GET /metrics when non-nil.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// NewRouter builds the gin engine with global middleware and all routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware(cfg.Logger))
	router.Use(middleware.LoggerMiddleware(cfg.Logger))
	router.Use(middleware.MetricsMiddleware(cfg.Metrics))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	health.NewHandler(cfg.ServiceName).RegisterRoutes(router)

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/v1")
	cfg.QuoteHandler.RegisterRoutes(apiV1)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
