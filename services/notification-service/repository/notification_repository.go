package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/services/notification-service/models"
)

type NotificationRepository interface {
	SaveLog(ctx context.Context, log *models.NotificationLog) error
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
	GetLogByID(ctx context.Context, id uint) (*models.NotificationLog, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
}

type gormNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func whereIf(column, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}

func matching(f models.NotificationFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(
			whereIf("recipient", f.Recipient),
			whereIf("status", f.Status),
			whereIf("event_type", f.EventType),
		)
	}
}

func (r *gormNotificationRepository) SaveLog(ctx context.Context, log *models.NotificationLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("save notification log: %w", err)
	}
	return nil
}

// GetLogs returns one page of matching logs, newest first, and the total
// number of matches.
func (r *gormNotificationRepository) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	filter = filter.Normalize()
	base := r.db.WithContext(ctx).Model(&models.NotificationLog{}).Scopes(matching(filter))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notification logs: %w", err)
	}
	if total == 0 {
		return []models.NotificationLog{}, 0, nil
	}

	logs := []models.NotificationLog{}
	err := base.Order("created_at DESC, id DESC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list notification logs: %w", err)
	}
	return logs, total, nil
}

func (r *gormNotificationRepository) GetLogByID(ctx context.Context, id uint) (*models.NotificationLog, error) {
	var log models.NotificationLog
	err := r.db.WithContext(ctx).First(&log, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("notification %d: %w", id, cart.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *gormNotificationRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	counts := []models.StatusCount{}
	err := r.db.WithContext(ctx).Model(&models.NotificationLog{}).
		Select("event_type, status, COUNT(*) AS count").
		Group("event_type, status").
		Order("event_type, status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count notifications by status: %w", err)
	}
	return counts, nil
}
