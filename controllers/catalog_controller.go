package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/models"
)

// CatalogAPI is the slice of the shop client the catalog pages need.
type CatalogAPI interface {
	ListProducts(ctx context.Context, query string) (json.RawMessage, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

type CatalogController struct {
	shop   CatalogAPI
	logger *zap.Logger
}

func NewCatalogController(shop CatalogAPI, logger *zap.Logger) *CatalogController {
	return &CatalogController{
		shop:   shop,
		logger: logger,
	}
}

// ListProducts passes a catalog page through from the shop API.
func (cc *CatalogController) ListProducts(c *gin.Context) {
	page, err := cc.shop.ListProducts(c.Request.Context(), c.Request.URL.RawQuery)
	if err != nil {
		cc.logger.Error("Catalog listing failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Catalog is temporarily unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json", page)
}

// GetProduct returns one product's detail page data.
func (cc *CatalogController) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	product, err := cc.shop.GetProduct(c.Request.Context(), id)
	if err != nil {
		cc.logger.Error("Product lookup failed", zap.Int64("product_id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Product is temporarily unavailable"})
		return
	}
	c.JSON(http.StatusOK, product)
}
