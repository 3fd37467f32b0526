package handlers

import (
	"errors"
	"io"
	"net/http"

	"woosync/internal/connectors/woocommerce"
	"woosync/internal/logger"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	connector *woocommerce.WooCommerceConnector
	secret    string
	logger    *logger.Logger
}

func NewWebhookHandler(connector *woocommerce.WooCommerceConnector, secret string, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		connector: connector,
		secret:    secret,
		logger:    logger,
	}
}

// WooCommerce receives product webhooks from a source store.
func (h *WebhookHandler) WooCommerce(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	if err := woocommerce.VerifySignature(h.secret, payload, c.GetHeader("X-WC-Webhook-Signature")); err != nil {
		h.logger.Warn("Rejected webhook from %s: %v", c.ClientIP(), err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	topic := c.GetHeader("X-WC-Webhook-Topic")
	if topic == "" {
		// WooCommerce sends a ping without a topic when the webhook is saved.
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
		return
	}

	result, err := h.connector.HandleWebhook(c.Request.Context(), topic, payload)
	if err != nil {
		h.logger.Error("Failed to handle webhook %s: %v", topic, err)
		if errors.Is(err, woocommerce.ErrInvalidPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
