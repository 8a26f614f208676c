package auth

import (
	"net/http"
	"strings"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/middleware"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
)

const tokenMaxAge = 7 * 24 * 60 * 60

// startSession writes the cookie session and the token cookie for user
func startSession(c *gin.Context, user models.User) (string, error) {
	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", err
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	session.Set(middleware.SessionRoleKey, string(user.Role))
	if err := session.Save(); err != nil {
		return "", err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", token, tokenMaxAge, "/", "", config.AppConfig.CookieSecure, true)
	return token, nil
}

// secondFactorPassed reports whether user may sign in with the given TOTP code.
// Admins with 2FA enabled need a valid code on every sign-in path; on failure the 401 is written.
func secondFactorPassed(c *gin.Context, user models.User, code string) bool {
	if user.Role != models.RoleAdmin || !user.TwoFactorEnabled || user.TwoFactorSecret == nil {
		return true
	}
	if code != "" && totp.Validate(code, *user.TwoFactorSecret) {
		return true
	}
	c.JSON(http.StatusUnauthorized, gin.H{
		"message":           "Two-factor code required",
		"twoFactorRequired": true,
	})
	return false
}

// respondSignedIn sends the user payload, adding the token for mobile clients
func respondSignedIn(c *gin.Context, status int, message string, user models.User, token string) {
	body := gin.H{
		"message": message,
		"user":    userResponse(user),
	}
	if config.AppConfig.EnableMobileTokenReturn {
		body["token"] = token
	}
	c.JSON(status, body)
}

func userResponse(user models.User) gin.H {
	return gin.H{
		"id":               user.ID,
		"name":             user.Name,
		"email":            user.Email,
		"phone":            user.Phone,
		"role":             user.Role,
		"isVerified":       user.IsVerified,
		"avatarUrl":        user.AvatarURL,
		"hasPassword":      user.HasPassword(),
		"twoFactorEnabled": user.TwoFactorEnabled,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
