package database

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yashrajoria/stayshop/services/booking-service/models"
)

// Migrate creates or updates the booking tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Room{}, &models.Booking{}, &models.Review{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// SampleRooms is inserted into an empty rooms table.
func SampleRooms() []models.Room {
	return []models.Room{
		{Name: "Deluxe Room", RoomType: "Deluxe", Capacity: 2, PricePerNight: decimal.NewFromInt(2500),
			ImageURL: "/static/images/deluxe.jpg", Amenities: "King bed, City view, Free Wi-Fi"},
		{Name: "Executive Suite", RoomType: "Suite", Capacity: 3, PricePerNight: decimal.NewFromInt(4500),
			ImageURL: "/static/images/suite.jpg", Amenities: "Living area, Sea view, Minibar"},
		{Name: "Standard Room", RoomType: "Standard", Capacity: 2, PricePerNight: decimal.NewFromInt(1500),
			ImageURL: "/static/images/standard.jpg", Amenities: "Queen bed, Free Wi-Fi"},
		{Name: "Family Room", RoomType: "Family", Capacity: 5, PricePerNight: decimal.NewFromInt(5500),
			ImageURL: "/static/images/family.jpg", Amenities: "Two queen beds, Sofa bed, Kitchenette"},
	}
}

// Seed fills an empty rooms table with the sample rooms and a demo review.
// A populated table is left alone.
func Seed(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Room{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count rooms: %w", err)
	}
	if count > 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := SampleRooms()
		if err := tx.Create(&rooms).Error; err != nil {
			return fmt.Errorf("seed rooms: %w", err)
		}
		review := models.Review{
			RoomID:  rooms[0].ID,
			Name:    "Asha",
			Rating:  5,
			Comment: "Spotless room and a lovely view.",
		}
		if err := tx.Create(&review).Error; err != nil {
			return fmt.Errorf("seed review: %w", err)
		}
		logger.Info("seeded sample rooms", zap.Int("rooms", len(rooms)))
		return nil
	})
}
