package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/apperrors"
	"storefront/checkout"
	"storefront/clients"
	"storefront/models"
)

// CatalogRoot is where checkout bails out to when it has nothing to
// show.
const CatalogRoot = "/"

const (
	placeholderName     = "Product unavailable"
	placeholderImageURL = "/images/placeholder.png"
)

// OrderLookupAPI is the slice of the shop client the order pages need
// for display enrichment.
type OrderLookupAPI interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

type OrderController struct {
	flow   *checkout.Orchestrator
	shop   OrderLookupAPI
	logger *zap.Logger
}

func NewOrderController(flow *checkout.Orchestrator, shop OrderLookupAPI, logger *zap.Logger) *OrderController {
	return &OrderController{
		flow:   flow,
		shop:   shop,
		logger: logger,
	}
}

// BeginCheckout snapshots the checked cart lines into a draft. An
// empty selection is a local validation failure.
func (oc *OrderController) BeginCheckout(c *gin.Context) {
	if err := oc.flow.Begin(c.Request.Context()); err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order started"})
}

// GetOrderSheet renders the review page data. Direct navigation with
// no draft goes back to the catalog root instead of an empty sheet.
func (oc *OrderController) GetOrderSheet(c *gin.Context) {
	sheet, err := oc.flow.Sheet()
	if err != nil {
		c.Redirect(http.StatusSeeOther, CatalogRoot)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

type SetAgreementRequest struct {
	Name  models.Agreement `json:"name" binding:"required,oneof=all personal_info third_party payment"`
	Value *bool            `json:"value"`
}

// SetAgreement updates one consent flag on the order sheet. A request
// without an explicit value is a checkbox click: the flag flips.
func (oc *OrderController) SetAgreement(c *gin.Context) {
	var req SetAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var err error
	if req.Value != nil {
		err = oc.flow.SetAgreement(req.Name, *req.Value)
	} else {
		err = oc.flow.ToggleAgreement(req.Name)
	}
	if err != nil {
		respondAppError(c, err)
		return
	}

	sheet, err := oc.flow.Sheet()
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

type ApplyDiscountsRequest struct {
	CouponDiscount int64 `json:"coupon_discount" binding:"gte=0"`
	Miles          int64 `json:"miles" binding:"gte=0"`
}

// ApplyDiscounts records coupon and mileage selections for the draft.
func (oc *OrderController) ApplyDiscounts(c *gin.Context) {
	var req ApplyDiscountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := oc.flow.ApplyCoupon(req.CouponDiscount); err != nil {
		respondAppError(c, err)
		return
	}
	if err := oc.flow.ApplyMiles(req.Miles); err != nil {
		respondAppError(c, err)
		return
	}

	sheet, err := oc.flow.Sheet()
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

// SubmitOrder runs the agreement gate and the order-creation call.
func (oc *OrderController) SubmitOrder(c *gin.Context) {
	order, err := oc.flow.Submit(c.Request.Context())
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}

		// Remote rejection or network failure: the sheet keeps the
		// draft and agreements, the shopper sees the message.
		msg := "Order could not be completed. Please try again."
		var apiErr *clients.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order completed",
		"order":   order,
	})
}

// GetConfirmation renders the confirmation page for the accepted
// order. Without one it goes back to the catalog root.
func (oc *OrderController) GetConfirmation(c *gin.Context) {
	order, err := oc.flow.Confirmation()
	if err != nil {
		c.Redirect(http.StatusSeeOther, CatalogRoot)
		return
	}
	c.JSON(http.StatusOK, oc.enrichOrder(c.Request.Context(), order))
}

// ContinueShopping discards all checkout state.
func (oc *OrderController) ContinueShopping(c *gin.Context) {
	oc.flow.ContinueShopping()
	c.JSON(http.StatusOK, gin.H{"redirect": CatalogRoot})
}

// GetOrder renders a past order with product enrichment.
func (oc *OrderController) GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := oc.shop.GetOrder(c.Request.Context(), id)
	if err != nil {
		var apiErr *clients.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		oc.logger.Error("Order lookup failed", zap.Int64("order_id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Order is temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, oc.enrichOrder(c.Request.Context(), order))
}

// orderLineView is an order detail plus catalog display data.
type orderLineView struct {
	models.OrderDetail
	StatusLabel string `json:"status_label"`
	SellerName  string `json:"seller_name"`
	ImageURL    string `json:"image_url"`
}

type orderView struct {
	models.Order
	Lines []orderLineView `json:"lines"`
}

// enrichOrder decorates each line with seller and image data. A
// product that no longer resolves degrades to a placeholder; it never
// drops the line or fails the page.
func (oc *OrderController) enrichOrder(ctx context.Context, order *models.Order) orderView {
	view := orderView{Order: *order}

	for _, detail := range order.OrderDetails {
		line := orderLineView{
			OrderDetail: detail,
			StatusLabel: detail.Status.Label(),
			SellerName:  placeholderName,
			ImageURL:    placeholderImageURL,
		}
		if product, err := oc.shop.GetProduct(ctx, detail.ProductID); err == nil {
			line.SellerName = product.SellerName
			line.ImageURL = product.ImageURL
		} else {
			oc.logger.Debug("Product enrichment unavailable",
				zap.Int64("product_id", detail.ProductID),
				zap.Error(err),
			)
		}
		view.Lines = append(view.Lines, line)
	}
	return view
}

// respondAppError writes a typed application error, falling back to
// 500 for anything unrecognized.
func respondAppError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
