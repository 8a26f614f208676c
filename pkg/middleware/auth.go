package middleware

import (
	"errors"
	"net/http"
	"strings"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	// SessionUserKey and SessionRoleKey are the cookie-session keys written at sign-in
	SessionUserKey = "userId"
	SessionRoleKey = "role"

	userContextKey = "user"
)

// AuthenticateToken resolves the caller from a bearer token, the token cookie, or the session
func AuthenticateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// authenticate stores the caller in the context, or writes the error response and aborts
func authenticate(c *gin.Context) (models.User, bool) {
	userID, err := resolveUserID(c)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token expired."})
		} else {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token."})
		}
		return models.User{}, false
	}
	if userID == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access denied. No token provided."})
		return models.User{}, false
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		log.Debug().Err(err).Int("user_id", userID).Msg("authenticated user not found")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token. User not found."})
		return models.User{}, false
	}

	if !user.IsActive {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Account is disabled."})
		return models.User{}, false
	}

	c.Set(userContextKey, user)
	return user, true
}

// resolveUserID returns 0 with a nil error when the request carries no credentials
func resolveUserID(c *gin.Context) (int, error) {
	token := ""
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
		}
	}
	if token == "" {
		if cookieToken, err := c.Cookie("token"); err == nil {
			token = cookieToken
		}
	}

	if token != "" {
		claims, err := utils.VerifyToken(token)
		if err != nil {
			return 0, err
		}
		return claims.ID, nil
	}

	// sessions.Default panics when the sessions middleware is not installed
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return 0, nil
	}
	if id, ok := sessions.Default(c).Get(SessionUserKey).(int); ok {
		return id, nil
	}
	return 0, nil
}

// CurrentUser returns the user stored by AuthenticateToken
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// AuthorizeRoles middleware - check if user has required role
func AuthorizeRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required."})
			return
		}
		if !hasRole(user, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied. Insufficient permissions."})
			return
		}
		c.Next()
	}
}

func hasRole(user models.User, roles []models.Role) bool {
	for _, role := range roles {
		if user.Role == role {
			return true
		}
	}
	return false
}

// restrictTo authenticates and checks the role before any later handler runs
func restrictTo(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticate(c)
		if !ok {
			return
		}
		if !hasRole(user, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied. Insufficient permissions."})
			return
		}
		c.Next()
	}
}

// RestrictToCustomer - convenience middleware for CUSTOMER only
func RestrictToCustomer() gin.HandlerFunc {
	return restrictTo(models.RoleCustomer)
}

// RestrictToAdmin - convenience middleware for ADMIN only
func RestrictToAdmin() gin.HandlerFunc {
	return restrictTo(models.RoleAdmin)
}

// RestrictToAdminOrSupport - help-desk routes shared by admins and support agents
func RestrictToAdminOrSupport() gin.HandlerFunc {
	return restrictTo(models.RoleAdmin, models.RoleSupport)
}
