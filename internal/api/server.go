package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"woosync/internal/api/handlers"
	"woosync/internal/api/middleware"
	"woosync/internal/config"
	"woosync/internal/connectors/woocommerce"
	"woosync/internal/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

// New builds the HTTP API. runs may be nil when no database is configured;
// the run history routes then answer 503.
func New(cfg *config.Config, logger *logger.Logger, connector *woocommerce.WooCommerceConnector, runs handlers.RunReader) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger.Named("http")))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	productHandler := handlers.NewProductHandler(connector, logger)
	syncHandler := handlers.NewSyncHandler(connector, runs, logger)
	webhookHandler := handlers.NewWebhookHandler(connector, cfg.WebhookSecret, logger)
	healthHandler := handlers.NewHealthHandler(connector, logger)

	router.GET("/health", healthHandler.Check)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Products
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.POST("", productHandler.Create)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Delete)
		}

		// Sync
		sync := v1.Group("/sync")
		{
			sync.POST("", syncHandler.SyncBatch)
			sync.POST("/product", syncHandler.SyncOne)
			sync.GET("/runs", syncHandler.ListRuns)
			sync.GET("/runs/:id", syncHandler.GetRun)
		}

		// Webhooks
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/woocommerce", webhookHandler.WooCommerce)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	// Batch syncs pause between slices, so writes get more room than reads.
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// GetRouter returns the Gin router, for tests and embedding.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
