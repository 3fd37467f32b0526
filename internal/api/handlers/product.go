package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"woosync/internal/connectors/woocommerce"
	"woosync/internal/logger"
	"woosync/internal/models"
	woo "woosync/internal/services/woocommerce"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	connector *woocommerce.WooCommerceConnector
	logger    *logger.Logger
}

func NewProductHandler(connector *woocommerce.WooCommerceConnector, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		connector: connector,
		logger:    logger,
	}
}

// List returns one page of store products, or the product matching ?sku=.
func (h *ProductHandler) List(c *gin.Context) {
	if sku := c.Query("sku"); sku != "" {
		product, err := h.connector.FindBySKU(c.Request.Context(), sku)
		if errors.Is(err, woocommerce.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"data": []models.Product{}})
			return
		}
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": []*models.Product{product}})
		return
	}

	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	result, err := h.connector.ListProducts(c.Request.Context(), woo.ListOptions{Page: page, PerPage: perPage})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result.Products,
		"pagination": gin.H{
			"page":        result.Page,
			"per_page":    result.PerPage,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := h.connector.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (h *ProductHandler) Create(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.connector.CreateProduct(c.Request.Context(), &product)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.connector.UpdateProduct(c.Request.Context(), id, &product)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	deleted, err := h.connector.DeleteProduct(c.Request.Context(), id, force)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": deleted})
}

func (h *ProductHandler) respondError(c *gin.Context, err error) {
	h.logger.Error("Product request failed: %v", err)
	respondError(c, err)
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return 0, false
	}
	return id, true
}
