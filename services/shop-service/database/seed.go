package database

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yashrajoria/stayshop/services/shop-service/models"
)

// Migrate creates or updates the shop tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// SampleProducts is inserted into an empty products table.
func SampleProducts() []models.Product {
	return []models.Product{
		{Name: "Canvas Tote Bag", Category: "Accessories", Price: decimal.NewFromInt(350), Stock: 40,
			ImageURL: "/static/images/tote.jpg", Description: "Heavy cotton tote with inner pocket."},
		{Name: "Ceramic Mug", Category: "Home", Price: decimal.NewFromInt(250), Stock: 60,
			ImageURL: "/static/images/mug.jpg", Description: "Hand-glazed 350 ml mug."},
		{Name: "Wireless Earbuds", Category: "Electronics", Price: decimal.NewFromInt(1990), Stock: 25,
			ImageURL: "/static/images/earbuds.jpg", Description: "Bluetooth 5.3 with charging case."},
		{Name: "Linen Shirt", Category: "Clothing", Price: decimal.NewFromInt(890), Stock: 30,
			ImageURL: "/static/images/shirt.jpg", Description: "Relaxed fit, natural linen."},
	}
}

// Seed fills an empty products table. A populated table is left alone.
func Seed(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	products := SampleProducts()
	if err := db.WithContext(ctx).Create(&products).Error; err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	logger.Info("seeded sample products", zap.Int("products", len(products)))
	return nil
}
