package database

import (
	"fmt"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDatabase initializes the database connection
func InitDatabase() error {
	// Configure GORM logger
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		PrepareStmt:    false,
		TranslateError: true,
	}

	// Development mode - verbose logging
	if config.IsDevelopment() {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	} else {
		// Production mode - only errors
		gormConfig.Logger = logger.Default.LogMode(logger.Error)
	}

	// Connect to PostgreSQL with implicit prepared statements disabled
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  config.AppConfig.DatabaseURL,
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL database
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	DB = db
	log.Info().Msg("database connection established")

	return nil
}

// AllModels lists every table the application owns, in dependency order
func AllModels() []interface{} {
	return []interface{}{
		// Identity
		&models.User{},
		&models.Address{},
		&models.UserDeviceToken{},

		// Catalog
		&models.Category{},
		&models.Product{},
		&models.Pincode{},

		// Cart & wishlist
		&models.CartItem{},
		&models.WishlistItem{},

		// Orders & promotions
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.CouponUsage{},

		// Support
		&models.Review{},
		&models.Ticket{},
		&models.TicketMessage{},

		// Marketing
		&models.NewsletterSubscriber{},
		&models.NewsletterCampaign{},

		// Back-office
		&models.DashboardWidget{},
	}
}

// AutoMigrate runs auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("running database migrations")

	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	createIndexes(db)

	log.Info().Msg("database migrations completed")
	return nil
}

// createIndexes creates composite indexes gorm tags cannot express
func createIndexes(db *gorm.DB) {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_products_category_active ON products (category_id, is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_product_approved ON reviews (product_id, is_approved)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_status_priority ON tickets (status, priority)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			log.Warn().Err(err).Str("stmt", stmt).Msg("failed to create index")
		}
	}
}

// Ping checks the SQL connection
func Ping() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CloseDatabase closes the database connection
func CloseDatabase() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		log.Error().Err(err).Msg("error getting database instance")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("error closing database")
	} else {
		log.Info().Msg("database connection closed")
	}
}
