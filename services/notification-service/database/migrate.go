package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yashrajoria/stayshop/services/notification-service/models"
)

// Migrate creates or updates the notification table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.NotificationLog{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
