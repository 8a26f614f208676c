package routes

import (
	"time"

	"petshop_backend/pkg/controllers/customer"
	"petshop_backend/pkg/database"
	"petshop_backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Stored order responses are replayed for this long
const orderIdempotencyTTL = 24 * time.Hour

// RegisterCatalogRoutes registers the public storefront routes
func RegisterCatalogRoutes(router *gin.RouterGroup) {
	catalog := router.Group("/catalog")
	{
		catalog.GET("/categories", customer.ListCategories)
		catalog.GET("/products", customer.ListProducts)
		catalog.GET("/products/:slug", customer.GetProductBySlug)
		catalog.GET("/products/:slug/reviews", customer.GetProductReviews)
		catalog.GET("/pincodes/:code", customer.CheckPincode)
	}

	newsletter := router.Group("/newsletter")
	{
		newsletter.POST("/subscribe", customer.Subscribe)
		newsletter.GET("/unsubscribe", customer.Unsubscribe)
	}
}

// RegisterCustomerRoutes registers all customer-facing API routes
func RegisterCustomerRoutes(router *gin.RouterGroup) {
	customerGroup := router.Group("/customer")
	customerGroup.Use(middleware.RestrictToCustomer())
	{
		// Profile, addresses and devices
		customerGroup.PUT("/profile", customer.UpdateProfile)
		customerGroup.GET("/addresses", customer.ListAddresses)
		customerGroup.POST("/addresses", customer.CreateAddress)
		customerGroup.PUT("/addresses/:id", customer.UpdateAddress)
		customerGroup.DELETE("/addresses/:id", customer.DeleteAddress)
		customerGroup.POST("/devices", customer.RegisterDevice)

		// Cart
		customerGroup.GET("/cart", customer.GetCart)
		customerGroup.POST("/cart", customer.AddToCart)
		customerGroup.PUT("/cart/:productId", customer.SetCartQuantity)
		customerGroup.DELETE("/cart/:productId", customer.RemoveCartItem)
		customerGroup.DELETE("/cart", customer.ClearCart)

		// Wishlist
		customerGroup.GET("/wishlist", customer.GetWishlist)
		customerGroup.POST("/wishlist", customer.AddToWishlist)
		customerGroup.DELETE("/wishlist/:productId", customer.RemoveFromWishlist)
		customerGroup.POST("/wishlist/:productId/move-to-cart", customer.MoveToCart)

		// Coupons
		customerGroup.GET("/coupons", customer.ListAvailableCoupons)
		customerGroup.POST("/coupons/preview", customer.PreviewCoupon)

		// Orders and payments
		customerGroup.GET("/payment-config", customer.GetPaymentConfig)
		customerGroup.POST("/orders", middleware.Idempotency(database.Redis, orderIdempotencyTTL), customer.PlaceOrder)
		customerGroup.GET("/orders", customer.ListOrders)
		customerGroup.GET("/orders/:id", customer.GetOrder)
		customerGroup.POST("/orders/:id/cancel", customer.CancelOrder)
		customerGroup.POST("/orders/:id/pay", customer.PayOrder)
		customerGroup.POST("/orders/:id/verify-payment", customer.VerifyPayment)

		// Reviews
		customerGroup.GET("/reviews", customer.ListMyReviews)
		customerGroup.POST("/reviews", customer.CreateReview)
		customerGroup.DELETE("/reviews/:id", customer.DeleteMyReview)

		// Help desk
		customerGroup.GET("/tickets", customer.ListTickets)
		customerGroup.POST("/tickets", customer.CreateTicket)
		customerGroup.GET("/tickets/:id", customer.GetTicket)
		customerGroup.POST("/tickets/:id/messages", customer.AddTicketMessage)
		customerGroup.POST("/tickets/:id/image", customer.UploadTicketImage)
	}
}
