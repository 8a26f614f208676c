// Package testutil wires in-memory SQLite and Redis for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestConfig returns a config suitable for handlers under test
func TestConfig() *config.Config {
	return &config.Config{
		Port:                  "0",
		Environment:           "test",
		LogLevel:              "disabled",
		DatabaseURL:           "sqlite",
		JWTSecret:             "test-jwt-secret",
		JWTExpiresIn:          "1h",
		SessionSecret:         "test-session-secret",
		RazorpayKeyID:         "rzp_test_key",
		RazorpayKeySecret:     "rzp_test_secret",
		GoogleClientID:        "test-client.apps.googleusercontent.com",
		MailFrom:              "hello@pawsandwhiskers.test",
		MailFromName:          "Paws & Whiskers",
		FreeDeliveryThreshold: 999,
	}
}

// NewTestDB opens a private in-memory database, migrates it and installs it as database.DB.
// config.AppConfig is replaced with TestConfig for the duration of the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	prevDB, prevCfg := database.DB, config.AppConfig
	database.DB = db
	config.AppConfig = TestConfig()
	t.Cleanup(func() {
		database.DB = prevDB
		config.AppConfig = prevCfg
		sqlDB.Close()
	})
	return db
}

// NewTestRedis starts miniredis and installs a client as database.Redis
func NewTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	prev := database.Redis
	database.Redis = client
	t.Cleanup(func() {
		database.Redis = prev
		client.Close()
	})
	return mr, client
}

// CreateUser inserts an active, verified user with password "password123"
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)

	user := models.User{
		Email:      &email,
		Name:       "Test " + string(role),
		Password:   &hash,
		Role:       role,
		IsVerified: true,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateCategory inserts an active category
func CreateCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name, Slug: utils.Slugify(name), IsActive: true}
	require.NoError(t, db.Create(&category).Error)
	return category
}

// CreateProduct inserts an active product in the given category
func CreateProduct(t *testing.T, db *gorm.DB, categoryID int, name string, price float64, inventory int) models.Product {
	t.Helper()
	product := models.Product{
		Name:              name,
		Slug:              utils.Slugify(name),
		PetType:           models.PetTypeDog,
		CategoryID:        categoryID,
		Price:             price,
		Inventory:         inventory,
		LowStockThreshold: 5,
		IsActive:          true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

// CreatePincode registers a serviceable pincode
func CreatePincode(t *testing.T, db *gorm.DB, code string, charge float64) models.Pincode {
	t.Helper()
	pincode := models.Pincode{Code: code, City: "Bengaluru", State: "Karnataka", DeliveryCharge: charge, DeliveryDays: 3, IsActive: true}
	require.NoError(t, db.Create(&pincode).Error)
	return pincode
}

// CreateAddress inserts a default address for the user
func CreateAddress(t *testing.T, db *gorm.DB, userID int, pincode string) models.Address {
	t.Helper()
	address := models.Address{
		UserID:    userID,
		FullName:  "Test Customer",
		Phone:     "9876543210",
		Line1:     "12 MG Road",
		City:      "Bengaluru",
		State:     "Karnataka",
		Pincode:   pincode,
		IsDefault: true,
	}
	require.NoError(t, db.Create(&address).Error)
	return address
}

// CreateCoupon inserts an active coupon valid for the next day
func CreateCoupon(t *testing.T, db *gorm.DB, code string, discountType models.DiscountType, value float64) models.Coupon {
	t.Helper()
	coupon := models.Coupon{
		Code:         code,
		DiscountType: discountType,
		Value:        value,
		ValidFrom:    time.Now().Add(-time.Hour),
		ValidUntil:   time.Now().Add(24 * time.Hour),
		IsActive:     true,
	}
	require.NoError(t, db.Create(&coupon).Error)
	return coupon
}

// BearerToken returns an Authorization header value for the user
func BearerToken(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return "Bearer " + token
}
