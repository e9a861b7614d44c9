package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/controllers"
	"storefront/middleware"
	"storefront/session"
)

func Register(
	r *gin.Engine,
	sessions *session.Store,
	catalogCtrl *controllers.CatalogController,
	cartCtrl *controllers.CartController,
	sessionCtrl *controllers.SessionController,
	orderCtrl *controllers.OrderController,
) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public pages
	r.GET("/products", catalogCtrl.ListProducts)
	r.GET("/products/:id", catalogCtrl.GetProduct)
	r.POST("/signin", middleware.SignInRateLimit(), sessionCtrl.SignIn)
	r.POST("/signout", sessionCtrl.SignOut)

	// Cart page: usable before sign-in, the guard only kicks in at
	// checkout.
	cart := r.Group("/cart")
	{
		cart.GET("/items", cartCtrl.GetCart)
		cart.POST("/items", cartCtrl.AddItem)
		cart.PATCH("/items/:product_id", cartCtrl.UpdateQuantity)
		cart.DELETE("/items/:product_id", cartCtrl.RemoveItem)
		cart.DELETE("/items", cartCtrl.ClearCart)
		cart.POST("/items/:product_id/check", cartCtrl.ToggleChecked)
		cart.POST("/check-all", cartCtrl.ToggleAllChecked)
	}

	// Protected pages: nothing renders before the session resolves.
	protected := r.Group("/")
	protected.Use(middleware.RequireSession(sessions))
	{
		protected.GET("/me", sessionCtrl.Me)

		protected.POST("/order", orderCtrl.BeginCheckout)
		protected.GET("/order", orderCtrl.GetOrderSheet)
		protected.POST("/order/agreements", orderCtrl.SetAgreement)
		protected.POST("/order/discounts", orderCtrl.ApplyDiscounts)
		protected.POST("/order/submit", orderCtrl.SubmitOrder)
		protected.GET("/order/confirmation", orderCtrl.GetConfirmation)
		protected.POST("/order/continue", orderCtrl.ContinueShopping)

		protected.GET("/orders/:id", orderCtrl.GetOrder)
	}
}
