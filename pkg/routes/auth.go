package routes

import (
	"petshop_backend/pkg/controllers/auth"
	"petshop_backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Auth endpoints are throttled per client IP
const (
	authRateLimit = 5
	authRateBurst = 15
)

// RegisterAuthRoutes registers all authentication routes
func RegisterAuthRoutes(router *gin.RouterGroup) {
	limiter := middleware.NewRateLimiter(authRateLimit, authRateBurst)

	authGroup := router.Group("/auth")
	authGroup.Use(limiter.Middleware())
	{
		// Password auth
		authGroup.POST("/signup", auth.Signup)
		authGroup.POST("/signin", auth.SignIn)
		authGroup.POST("/signout", auth.SignOut)

		// OTP
		authGroup.POST("/otp/send", auth.SendOTP)
		authGroup.POST("/otp/verify", auth.VerifyOTPHandler)

		// Social login
		authGroup.POST("/google", auth.GoogleSignIn)

		// Protected routes
		authGroup.GET("/me", middleware.AuthenticateToken(), auth.Me)
		authGroup.PUT("/change-password", middleware.AuthenticateToken(), auth.ChangePassword)
	}
}
