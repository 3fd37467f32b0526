package handlers

import (
	"context"
	"net/http"
	"time"

	"woosync/internal/connectors/woocommerce"
	"woosync/internal/logger"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	connector *woocommerce.WooCommerceConnector
	logger    *logger.Logger
}

func NewHealthHandler(connector *woocommerce.WooCommerceConnector, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		connector: connector,
		logger:    logger,
	}
}

// Check reports whether the store answers with our credentials.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if _, err := h.connector.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"store":  "unreachable",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"store":  "ok",
	})
}
