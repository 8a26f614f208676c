package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"petshop_backend/pkg/models"
	"petshop_backend/pkg/utils"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogFixture is the YAML seed document
type CatalogFixture struct {
	Categories []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		SortOrder   int    `yaml:"sortOrder"`
		Products    []struct {
			Name           string   `yaml:"name"`
			Brand          string   `yaml:"brand"`
			Description    string   `yaml:"description"`
			PetType        string   `yaml:"petType"`
			Price          float64  `yaml:"price"`
			CompareAtPrice *float64 `yaml:"compareAtPrice"`
			Inventory      int      `yaml:"inventory"`
		} `yaml:"products"`
	} `yaml:"categories"`
	Pincodes []struct {
		Code           string  `yaml:"code"`
		City           string  `yaml:"city"`
		State          string  `yaml:"state"`
		DeliveryCharge float64 `yaml:"deliveryCharge"`
		DeliveryDays   int     `yaml:"deliveryDays"`
	} `yaml:"pincodes"`
}

// SeedSummary counts the rows written
type SeedSummary struct {
	Categories int
	Products   int
	Pincodes   int
}

// ParseCatalog decodes and validates a fixture
func ParseCatalog(r io.Reader) (*CatalogFixture, error) {
	var fixture CatalogFixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("invalid catalog fixture: %w", err)
	}

	for _, cat := range fixture.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return nil, errors.New("category name is required")
		}
		for _, p := range cat.Products {
			if p.Name == "" || p.Price <= 0 || p.Inventory < 0 {
				return nil, fmt.Errorf("product %q in %q needs a name, a positive price and non-negative inventory", p.Name, cat.Name)
			}
			if !models.ValidPetType(models.PetType(p.PetType)) {
				return nil, fmt.Errorf("product %q has unknown petType %q", p.Name, p.PetType)
			}
		}
	}
	for _, pin := range fixture.Pincodes {
		if !utils.IsValidPincode(pin.Code) {
			return nil, fmt.Errorf("invalid pincode %q", pin.Code)
		}
	}
	return &fixture, nil
}

// ApplyCatalog upserts the fixture by slug and pincode; running it twice is harmless
func ApplyCatalog(db *gorm.DB, fixture *CatalogFixture) (SeedSummary, error) {
	var summary SeedSummary
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, cat := range fixture.Categories {
			category := models.Category{
				Name:        strings.TrimSpace(cat.Name),
				Slug:        utils.Slugify(cat.Name),
				Description: cat.Description,
				SortOrder:   cat.SortOrder,
				IsActive:    true,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "description", "sort_order", "is_active", "updated_at"}),
			}).Create(&category).Error; err != nil {
				return fmt.Errorf("category %q: %w", cat.Name, err)
			}
			if err := tx.Where("slug = ?", category.Slug).First(&category).Error; err != nil {
				return err
			}
			summary.Categories++

			for _, p := range cat.Products {
				product := models.Product{
					Name:              p.Name,
					Slug:              utils.Slugify(p.Name),
					Brand:             p.Brand,
					Description:       p.Description,
					PetType:           models.PetType(p.PetType),
					CategoryID:        category.ID,
					Price:             utils.RoundMoney(p.Price),
					CompareAtPrice:    p.CompareAtPrice,
					Inventory:         p.Inventory,
					LowStockThreshold: 5,
					IsActive:          true,
				}
				if err := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "slug"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"name", "brand", "description", "pet_type", "category_id",
						"price", "compare_at_price", "inventory", "is_active", "updated_at",
					}),
				}).Create(&product).Error; err != nil {
					return fmt.Errorf("product %q: %w", p.Name, err)
				}
				summary.Products++
			}
		}

		for _, pin := range fixture.Pincodes {
			pincode := models.Pincode{
				Code:           pin.Code,
				City:           pin.City,
				State:          pin.State,
				DeliveryCharge: pin.DeliveryCharge,
				DeliveryDays:   pin.DeliveryDays,
				IsActive:       true,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{"city", "state", "delivery_charge", "delivery_days", "is_active", "updated_at"}),
			}).Create(&pincode).Error; err != nil {
				return fmt.Errorf("pincode %q: %w", pin.Code, err)
			}
			summary.Pincodes++
		}
		return nil
	})
	return summary, err
}

// EnsureStaffUser creates an ADMIN or SUPPORT account or resets an existing one
func EnsureStaffUser(db *gorm.DB, email, name, password, role string) (*models.User, bool, error) {
	r := models.Role(strings.ToUpper(role))
	if r != models.RoleAdmin && r != models.RoleSupport {
		return nil, false, fmt.Errorf("role must be ADMIN or SUPPORT, got %q", role)
	}
	if err := utils.CheckPasswordStrength(password); err != nil {
		return nil, false, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err = db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		user.Password = &hash
		user.Role = r
		user.IsActive = true
		return &user, false, db.Save(&user).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Email:      &email,
			Name:       name,
			Password:   &hash,
			Role:       r,
			IsVerified: true,
			IsActive:   true,
		}
		return &user, true, db.Create(&user).Error
	default:
		return nil, false, err
	}
}
