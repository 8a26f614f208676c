package utils

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/models"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the custom JWT claims
type TokenClaims struct {
	ID   int         `json:"id"`
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// ParseExpiry accepts Go durations plus a "d" day suffix ("7d"). Invalid input yields 7 days.
func ParseExpiry(expiresIn string) time.Duration {
	expiresIn = strings.TrimSpace(expiresIn)
	if strings.HasSuffix(expiresIn, "d") {
		if days, err := strconv.Atoi(strings.TrimSuffix(expiresIn, "d")); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	if d, err := time.ParseDuration(expiresIn); err == nil && d > 0 {
		return d
	}
	return 7 * 24 * time.Hour
}

// GenerateToken generates a JWT token for a user
func GenerateToken(userID int, role models.Role) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		ID:   userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ParseExpiry(config.AppConfig.JWTExpiresIn))),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// VerifyToken verifies and parses a JWT token
func VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
