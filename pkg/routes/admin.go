package routes

import (
	"petshop_backend/pkg/controllers/admin"
	"petshop_backend/pkg/controllers/auth"
	"petshop_backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes registers the back-office routes
func RegisterAdminRoutes(router *gin.RouterGroup) {
	adminGroup := router.Group("/admin")

	// Help desk is shared with support agents
	tickets := adminGroup.Group("/tickets", middleware.RestrictToAdminOrSupport())
	{
		tickets.GET("", admin.ListTickets)
		tickets.GET("/:id", admin.GetTicket)
		tickets.POST("/:id/reply", admin.ReplyToTicket)
		tickets.PATCH("/:id/status", admin.UpdateTicketStatus)
	}

	restricted := adminGroup.Group("", middleware.RestrictToAdmin())

	// Account security
	security := restricted.Group("/security/2fa")
	{
		security.POST("/setup", auth.SetupTwoFactor)
		security.POST("/enable", auth.EnableTwoFactor)
		security.POST("/disable", auth.DisableTwoFactor)
	}

	// Catalog
	categories := restricted.Group("/categories")
	{
		categories.GET("", admin.ListCategories)
		categories.POST("", admin.CreateCategory)
		categories.PUT("/:id", admin.UpdateCategory)
		categories.DELETE("/:id", admin.DeleteCategory)
	}

	products := restricted.Group("/products")
	{
		products.GET("", admin.ListProducts)
		products.POST("", admin.CreateProduct)
		products.GET("/:id", admin.GetProduct)
		products.PUT("/:id", admin.UpdateProduct)
		products.DELETE("/:id", admin.DeleteProduct)
		products.PATCH("/:id/inventory", admin.AdjustInventory)
		products.POST("/:id/image", admin.UploadProductImage)
	}

	pincodes := restricted.Group("/pincodes")
	{
		pincodes.GET("", admin.ListPincodes)
		pincodes.POST("", admin.CreatePincode)
		pincodes.PUT("/:id", admin.UpdatePincode)
		pincodes.DELETE("/:id", admin.DeletePincode)
	}

	// Orders and promotions
	orders := restricted.Group("/orders")
	{
		orders.GET("", admin.ListOrders)
		orders.GET("/:id", admin.GetOrder)
		orders.PATCH("/:id/status", admin.UpdateOrderStatus)
	}

	coupons := restricted.Group("/coupons")
	{
		coupons.GET("", admin.ListCoupons)
		coupons.POST("", admin.CreateCoupon)
		coupons.PUT("/:id", admin.UpdateCoupon)
		coupons.DELETE("/:id", admin.DeleteCoupon)
	}

	// Moderation
	reviews := restricted.Group("/reviews")
	{
		reviews.GET("", admin.ListReviews)
		reviews.PATCH("/:id/approve", admin.ApproveReview)
		reviews.DELETE("/:id", admin.DeleteReview)
	}

	// Newsletter
	newsletter := restricted.Group("/newsletter")
	{
		newsletter.GET("/subscribers", admin.ListSubscribers)
		newsletter.GET("/campaigns", admin.ListCampaigns)
		newsletter.POST("/campaigns", admin.CreateCampaign)
		newsletter.GET("/campaigns/:id", admin.GetCampaign)
		newsletter.PUT("/campaigns/:id", admin.UpdateCampaign)
		newsletter.DELETE("/campaigns/:id", admin.DeleteCampaign)
		newsletter.POST("/campaigns/:id/send", admin.SendCampaign)
	}

	// Customers
	restricted.GET("/customers", admin.ListCustomers)
	restricted.PATCH("/customers/:id/status", admin.SetCustomerActive)

	// Dashboard
	dashboard := restricted.Group("/dashboard")
	{
		dashboard.GET("/layout", admin.GetLayout)
		dashboard.PUT("/layout", admin.SaveLayout)
		dashboard.GET("/stats", admin.GetStats)
	}
}
