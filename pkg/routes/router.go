package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/database"
	"petshop_backend/pkg/logger"
	"petshop_backend/pkg/middleware"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Default browser origins when ALLOWED_ORIGINS is empty
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// SetupRouter builds the gin engine with middleware and every API route
func SetupRouter() *gin.Engine {
	router := gin.New()

	if sentry.CurrentHub().Client() != nil {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(middleware.RecoveryMiddleware())
	router.Use(logger.RequestLogger())
	router.Use(middleware.ErrorMiddleware())

	// Session middleware
	store := cookie.NewStore([]byte(config.AppConfig.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   config.AppConfig.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("session", store))

	setupCORS(router)

	router.MaxMultipartMemory = 10 << 20 // 10 MB

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Pet shop backend is running...")
	})

	api := router.Group("/api")
	{
		api.GET("/health", healthCheck)

		RegisterAuthRoutes(api)
		RegisterCatalogRoutes(api)
		RegisterCustomerRoutes(api)
		RegisterAdminRoutes(api)
	}

	router.NoRoute(middleware.NotFoundHandler())
	return router
}

// healthCheck reports database and cache reachability
func healthCheck(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":      "ok",
		"environment": config.AppConfig.Environment,
		"database":    "connected",
		"redis":       "disabled",
	}

	if err := database.Ping(); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "unreachable"
	}

	if database.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.Redis.Ping(ctx).Err(); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["redis"] = "unreachable"
		} else {
			body["redis"] = "connected"
		}
	}

	c.JSON(status, body)
}

// setupCORS allows any origin with credentials in development and a fixed list in production
func setupCORS(router *gin.Engine) {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", middleware.IdempotencyKeyHeader},
		ExposeHeaders:    []string{"Content-Range", "X-Content-Range", "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if config.IsProduction() {
		origins := defaultOrigins
		if config.AppConfig.AllowedOrigins != "" {
			origins = parseOrigins(config.AppConfig.AllowedOrigins)
		}
		corsConfig.AllowOrigins = origins
		log.Info().Strs("origins", origins).Msg("CORS enabled for configured origins")
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool {
			return true
		}
	}

	router.Use(cors.New(corsConfig))
}

// parseOrigins splits comma-separated origin string
func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
