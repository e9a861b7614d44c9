package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"storefront/cart"
)

func cartRouter() (*gin.Engine, *cart.Store) {
	gin.SetMode(gin.TestMode)
	carts := cart.NewStore(nullPersister{}, zap.NewNop())
	ctrl := NewCartController(carts)

	r := gin.New()
	r.GET("/cart/items", ctrl.GetCart)
	r.POST("/cart/items", ctrl.AddItem)
	r.PATCH("/cart/items/:product_id", ctrl.UpdateQuantity)
	return r, carts
}

func TestAddItem_ValidPayload(t *testing.T) {
	router, carts := cartRouter()

	payload := `{"product": {"id": 1, "name": "keyboard", "price": 810600}, "quantity": 2}`
	req, _ := http.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1621200), carts.TotalPrice())
}

func TestAddItem_RejectsZeroQuantity(t *testing.T) {
	router, carts := cartRouter()

	payload := `{"product": {"id": 1, "name": "keyboard", "price": 810600}, "quantity": 0}`
	req, _ := http.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, carts.Items())
}

func TestAddItem_RejectsMissingProductID(t *testing.T) {
	router, carts := cartRouter()

	payload := `{"product": {"name": "keyboard", "price": 810600}, "quantity": 1}`
	req, _ := http.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, carts.Items())
}

func TestUpdateQuantity_BelowOneKeepsStoredValue(t *testing.T) {
	router, carts := cartRouter()

	payload := `{"product": {"id": 1, "name": "keyboard", "price": 1000}, "quantity": 3}`
	req, _ := http.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	req, _ = http.NewRequest(http.MethodPatch, "/cart/items/1", bytes.NewBufferString(`{"quantity": -2}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), carts.Items()[0].Quantity)
}
