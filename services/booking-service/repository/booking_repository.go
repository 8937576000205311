package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/services/booking-service/models"
)

// BookingRepository defines data access for bookings.
type BookingRepository interface {
	CreateAll(ctx context.Context, bookings []*models.Booking) error
	ListByCustomer(ctx context.Context, email string) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id uint, next cart.Status) (*models.Booking, error)
}

// GormBookingRepository implements BookingRepository using GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// CreateAll inserts every booking in one transaction.
func (r *GormBookingRepository) CreateAll(ctx context.Context, bookings []*models.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, b := range bookings {
			if err := tx.Create(b).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByCustomer returns a customer's bookings, newest first. Emails match
// case-insensitively.
func (r *GormBookingRepository) ListByCustomer(ctx context.Context, email string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("LOWER(customer_email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at DESC, id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) ListAll(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &b, nil
}

// UpdateStatus moves a booking to next when the transition is allowed. The
// write is conditional on the status read, so a concurrent change surfaces
// as ErrInvalidTransition.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, id uint, next cart.Status) (*models.Booking, error) {
	booking, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == next {
		return booking, nil
	}
	if !booking.Status.CanTransition(next) {
		return nil, fmt.Errorf("booking %d %s -> %s: %w", id, booking.Status, next, cart.ErrInvalidTransition)
	}

	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, booking.Status).
		Update("status", next)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("booking %d changed concurrently: %w", id, cart.ErrInvalidTransition)
	}
	booking.Status = next
	return booking, nil
}
