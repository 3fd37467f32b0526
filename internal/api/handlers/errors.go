package handlers

import (
	"errors"
	"net/http"

	"woosync/internal/connectors/woocommerce"
	woo "woosync/internal/services/woocommerce"
	"woosync/internal/syncer"

	"github.com/gin-gonic/gin"
)

// respondError maps sync and store errors to HTTP responses. Store 4xx
// answers are passed through; anything else from the store is a bad gateway.
func respondError(c *gin.Context, err error) {
	var ve *syncer.ValidationError
	var rse *woo.RemoteStoreError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, woocommerce.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &rse):
		status := http.StatusBadGateway
		if rse.StatusCode >= 400 && rse.StatusCode < 500 {
			status = rse.StatusCode
		}
		c.JSON(status, gin.H{
			"error":        rse.Error(),
			"code":         rse.Code,
			"store_status": rse.StatusCode,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
