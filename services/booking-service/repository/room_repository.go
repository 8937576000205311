package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/services/booking-service/models"
)

// notFound turns gorm's sentinel into the cart one so callers only check one.
func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, cart.ErrNotFound)
	}
	return err
}

// RoomRepository defines data access for rooms.
type RoomRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	FindAll(ctx context.Context) ([]models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id uint) error
	FindItem(ctx context.Context, id uint) (*cart.CatalogItem, error)
}

// GormRoomRepository implements RoomRepository using GORM.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

func (r *GormRoomRepository) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, notFound(err, "room", id)
	}
	return &room, nil
}

func (r *GormRoomRepository) FindAll(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *GormRoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// Delete removes the room and its reviews. Past bookings keep their snapshot.
func (r *GormRoomRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Room{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("room %d: %w", id, cart.ErrNotFound)
		}
		return tx.Where("room_id = ?", id).Delete(&models.Review{}).Error
	})
}

// FindItem satisfies cart.Catalog.
func (r *GormRoomRepository) FindItem(ctx context.Context, id uint) (*cart.CatalogItem, error) {
	room, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return room.CatalogItem(), nil
}
