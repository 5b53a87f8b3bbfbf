package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/adapter"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/application"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/config"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/domain/quote"
	loyaltyEvents "github.com/Kilat-Pet-Delivery/service-loyalty/internal/events"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/httpclient"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/logger"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/metrics"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/tracing"
)

const serviceName = "service-loyalty"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-loyalty",
		zap.String("port", cfg.Port),
		zap.Bool("mock_upstreams", cfg.Upstreams.UseMocks),
	)

	// Initialize tracing
	var shutdownTracer func(context.Context) error
	if cfg.TracingConfig.JaegerEndpoint != "" {
		tp, err := tracing.InitTracerProvider(serviceName, cfg.TracingConfig.JaegerEndpoint, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to initialize tracing", zap.Error(err))
		}
		shutdownTracer = tp.Shutdown
	} else {
		tracing.InstallPropagator()
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)

	// Initialize collaborator adapters
	var (
		fxAdapter    adapter.FxAdapter
		promoAdapter adapter.PromoAdapter
	)
	if cfg.Upstreams.UseMocks {
		fxAdapter = adapter.NewMockFxAdapter(zapLogger)
		promoAdapter = adapter.NewMockPromoAdapter(zapLogger)
	} else {
		client := httpclient.NewClient(otel.Tracer("httpclient"))
		fxAdapter = adapter.NewHTTPFxAdapter(client, cfg.Upstreams.FxBaseURL)
		promoAdapter = adapter.NewHTTPPromoAdapter(client, cfg.Upstreams.PromoBaseURL)
	}

	fxResolver := application.NewFxResolver(fxAdapter, recorder, zapLogger)
	promoResolver := application.NewPromoResolver(promoAdapter, cfg.Upstreams.PromoTimeout, recorder, zapLogger)

	// Initialize Kafka producer for quote events
	var publisher application.QuoteEventPublisher
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
		defer kafkaProducer.Close()
		publisher = loyaltyEvents.NewQuotePublisher(kafkaProducer, cfg.KafkaConfig.QuoteTopic, zapLogger)
	} else {
		zapLogger.Info("no kafka brokers configured, quote events disabled")
	}

	// Initialize application service
	quoteService := application.NewQuoteService(
		fxResolver,
		promoResolver,
		quote.NewCalculator(),
		publisher,
		recorder,
		zapLogger,
	)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	routerCfg := handler.RouterConfig{
		ServiceName:  serviceName,
		QuoteHandler: handler.NewQuoteHandler(quoteService),
		Metrics:      recorder,
		Logger:       zapLogger,
	}
	if cfg.MetricsEnabled {
		routerCfg.Gatherer = registry
	}
	router := handler.NewRouter(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-loyalty...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	if shutdownTracer != nil {
		if err := shutdownTracer(shutdownCtx); err != nil {
			zapLogger.Error("failed to flush traces", zap.Error(err))
		}
	}

	zapLogger.Info("service-loyalty stopped")
}
