package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"storefront/apperrors"
	"storefront/cart"
	"storefront/models"
)

var validate = validator.New()

type CartController struct {
	carts *cart.Store
}

func NewCartController(carts *cart.Store) *CartController {
	return &CartController{carts: carts}
}

// AddItemRequest is the add-to-cart payload: the product as shown on
// the catalog page, plus the chosen quantity.
type AddItemRequest struct {
	Product  models.Product `json:"product" validate:"required"`
	Quantity int64          `json:"quantity" validate:"required,gte=1"`
}

type SetQuantityRequest struct {
	Quantity int64 `json:"quantity" validate:"required"`
}

// GetCart returns the current items and the running total.
func (cc *CartController) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":       cc.carts.Items(),
		"total_price": cc.carts.TotalPrice(),
	})
}

// AddItem inserts a product or bumps its quantity.
func (cc *CartController) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}
	if req.Product.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product id is required"})
		return
	}

	if err := cc.carts.AddItem(c.Request.Context(), req.Product, req.Quantity); err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": cc.carts.Items()})
}

// UpdateQuantity overwrites a line's quantity. Values below 1 are a
// no-op on the stored quantity.
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cc.carts.SetQuantity(c.Request.Context(), productID, req.Quantity)
	c.JSON(http.StatusOK, gin.H{"items": cc.carts.Items()})
}

// RemoveItem drops one line from the cart.
func (cc *CartController) RemoveItem(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	cc.carts.RemoveItem(c.Request.Context(), productID)
	c.JSON(http.StatusOK, gin.H{"items": cc.carts.Items()})
}

// ClearCart removes every line.
func (cc *CartController) ClearCart(c *gin.Context) {
	cc.carts.Clear(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

// ToggleChecked flips one line's selection flag.
func (cc *CartController) ToggleChecked(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	cc.carts.ToggleChecked(c.Request.Context(), productID)
	c.JSON(http.StatusOK, gin.H{"items": cc.carts.Items()})
}

// ToggleAllChecked checks every line unless all are already checked,
// in which case it unchecks them.
func (cc *CartController) ToggleAllChecked(c *gin.Context) {
	cc.carts.ToggleAllChecked(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"items": cc.carts.Items()})
}
