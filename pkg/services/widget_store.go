package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"petshop_backend/pkg/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

const GridColumns = 12

// WidgetStore persists per-admin dashboard layouts
type WidgetStore interface {
	Load(ctx context.Context, adminID int) ([]models.DashboardWidget, error)
	Replace(ctx context.Context, adminID int, widgets []models.DashboardWidget) error
}

// Widgets is the active layout store
var Widgets WidgetStore

// DefaultLayout is shown to admins who never saved a layout
func DefaultLayout() []models.DashboardWidget {
	return []models.DashboardWidget{
		{Key: "sales", Type: models.WidgetSalesChart, X: 0, Y: 0, W: 8, H: 4, Visible: true, Settings: models.JSONMap{"days": 30}},
		{Key: "orders", Type: models.WidgetOrdersSummary, X: 8, Y: 0, W: 4, H: 4, Visible: true},
		{Key: "low-stock", Type: models.WidgetLowStock, X: 0, Y: 4, W: 6, H: 4, Visible: true},
		{Key: "tickets", Type: models.WidgetOpenTickets, X: 6, Y: 4, W: 6, H: 2, Visible: true},
		{Key: "reviews", Type: models.WidgetPendingReviews, X: 6, Y: 6, W: 3, H: 2, Visible: true},
		{Key: "subscribers", Type: models.WidgetSubscribers, X: 9, Y: 6, W: 3, H: 2, Visible: true},
	}
}

// ValidateLayout checks widget keys, types and grid bounds
func ValidateLayout(widgets []models.DashboardWidget) error {
	seen := make(map[string]bool, len(widgets))
	for _, w := range widgets {
		if w.Key == "" {
			return errors.New("widget key is required")
		}
		if seen[w.Key] {
			return fmt.Errorf("duplicate widget key %q", w.Key)
		}
		seen[w.Key] = true

		if !models.ValidWidgetType(w.Type) {
			return fmt.Errorf("widget %q has unknown type %q", w.Key, w.Type)
		}
		if w.W < 1 || w.H < 1 {
			return fmt.Errorf("widget %q must be at least 1x1", w.Key)
		}
		if w.X < 0 || w.Y < 0 {
			return fmt.Errorf("widget %q has a negative position", w.Key)
		}
		if w.X+w.W > GridColumns {
			return fmt.Errorf("widget %q overflows the %d-column grid", w.Key, GridColumns)
		}
	}
	return nil
}

// GormWidgetStore keeps widgets in the dashboard_widgets table
type GormWidgetStore struct {
	db *gorm.DB
}

func NewGormWidgetStore(db *gorm.DB) *GormWidgetStore {
	return &GormWidgetStore{db: db}
}

func (s *GormWidgetStore) Load(ctx context.Context, adminID int) ([]models.DashboardWidget, error) {
	var widgets []models.DashboardWidget
	err := s.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("y ASC, x ASC").
		Find(&widgets).Error
	return widgets, err
}

func (s *GormWidgetStore) Replace(ctx context.Context, adminID int, widgets []models.DashboardWidget) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("admin_id = ?", adminID).Delete(&models.DashboardWidget{}).Error; err != nil {
			return err
		}
		if len(widgets) == 0 {
			return nil
		}
		rows := make([]models.DashboardWidget, len(widgets))
		for i, w := range widgets {
			w.ID = 0
			w.AdminID = adminID
			rows[i] = w
		}
		return tx.Create(&rows).Error
	})
}

// MongoWidgetStore keeps one document per widget in the dashboard_widgets collection
type MongoWidgetStore struct {
	coll *mongo.Collection
}

// NewMongoWidgetStore ensures the (adminId, key) unique index exists
func NewMongoWidgetStore(ctx context.Context, db *mongo.Database) (*MongoWidgetStore, error) {
	coll := db.Collection("dashboard_widgets")
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "adminId", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create widget index: %w", err)
	}
	return &MongoWidgetStore{coll: coll}, nil
}

func (s *MongoWidgetStore) Load(ctx context.Context, adminID int) ([]models.DashboardWidget, error) {
	cursor, err := s.coll.Find(ctx,
		bson.M{"adminId": adminID},
		options.Find().SetSort(bson.D{{Key: "y", Value: 1}, {Key: "x", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var widgets []models.DashboardWidget
	if err := cursor.All(ctx, &widgets); err != nil {
		return nil, err
	}
	return widgets, nil
}

func (s *MongoWidgetStore) Replace(ctx context.Context, adminID int, widgets []models.DashboardWidget) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"adminId": adminID}); err != nil {
		return err
	}
	if len(widgets) == 0 {
		return nil
	}
	now := time.Now()
	docs := make([]interface{}, len(widgets))
	for i, w := range widgets {
		w.AdminID = adminID
		w.UpdatedAt = now
		docs[i] = w
	}
	_, err := s.coll.InsertMany(ctx, docs)
	return err
}

// InitWidgetStore prefers MongoDB when connected
func InitWidgetStore(ctx context.Context, db *gorm.DB, mongoDB *mongo.Database) error {
	if mongoDB != nil {
		store, err := NewMongoWidgetStore(ctx, mongoDB)
		if err != nil {
			return err
		}
		Widgets = store
		return nil
	}
	Widgets = NewGormWidgetStore(db)
	return nil
}
