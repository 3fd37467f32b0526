package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"woosync/internal/connectors/woocommerce"
	"woosync/internal/database"
	"woosync/internal/logger"
	"woosync/internal/models"

	"github.com/gin-gonic/gin"
)

// RunReader reads the sync run history. It is nil when no database is configured.
type RunReader interface {
	GetRun(ctx context.Context, id string) (*models.SyncRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]models.SyncRun, int64, error)
}

type SyncHandler struct {
	connector *woocommerce.WooCommerceConnector
	runs      RunReader
	logger    *logger.Logger
}

func NewSyncHandler(connector *woocommerce.WooCommerceConnector, runs RunReader, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		connector: connector,
		runs:      runs,
		logger:    logger,
	}
}

type syncRequest struct {
	Products    []*models.Product `json:"products" binding:"required"`
	Concurrency *int              `json:"concurrency"`
	DelayMS     *int              `json:"delay_ms"`
}

// SyncBatch upserts all products in the body and returns one outcome per product.
func (h *SyncHandler) SyncBatch(c *gin.Context) {
	var request syncRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := h.connector.Options()
	if request.Concurrency != nil {
		if *request.Concurrency < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "concurrency must be positive"})
			return
		}
		opts.Concurrency = *request.Concurrency
	}
	if request.DelayMS != nil {
		if *request.DelayMS < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "delay_ms must not be negative"})
			return
		}
		opts.Delay = time.Duration(*request.DelayMS) * time.Millisecond
	}

	report := h.connector.SyncProducts(c.Request.Context(), models.SyncSourceAPI, request.Products, opts)

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// SyncOne upserts a single product and reports store errors as HTTP errors.
func (h *SyncHandler) SyncOne(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	synced, err := h.connector.SyncProduct(c.Request.Context(), &product)
	if err != nil {
		h.logger.Error("Failed to sync product %s: %v", product.SKU, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": synced})
}

func (h *SyncHandler) ListRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run history is not configured"})
		return
	}

	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	runs, total, err := h.runs.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to fetch sync runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sync runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": runs,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *SyncHandler) GetRun(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run history is not configured"})
		return
	}

	run, err := h.runs.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sync run not found"})
			return
		}
		h.logger.Error("Failed to fetch sync run: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sync run"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}
