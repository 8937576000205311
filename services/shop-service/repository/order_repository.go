package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/services/shop-service/models"
)

// OrderRepository defines data access for orders.
type OrderRepository interface {
	CreateAll(ctx context.Context, orders []*models.Order) error
	ListByCustomer(ctx context.Context, email string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uint, next cart.Status) (*models.Order, error)
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// CreateAll reserves stock and inserts every order in one transaction. If any
// product lacks stock nothing is written and ErrOutOfStock is returned.
func (r *GormOrderRepository) CreateAll(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", o.ProductID, o.Quantity).
				Update("stock", gorm.Expr("stock - ?", o.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("product %d: %w", o.ProductID, ErrOutOfStock)
			}
			if err := tx.Create(o).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByCustomer returns a customer's orders, newest first.
func (r *GormOrderRepository) ListByCustomer(ctx context.Context, email string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("LOWER(customer_email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, notFound(err, "order", id)
	}
	return &o, nil
}

// UpdateStatus applies an allowed transition. Cancelling returns the units to
// stock in the same transaction.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uint, next cart.Status) (*models.Order, error) {
	var updated *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.First(&o, id).Error; err != nil {
			return notFound(err, "order", id)
		}
		if o.Status == next {
			updated = &o
			return nil
		}
		if !o.Status.CanTransition(next) {
			return fmt.Errorf("order %d %s -> %s: %w", id, o.Status, next, cart.ErrInvalidTransition)
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, o.Status).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d changed concurrently: %w", id, cart.ErrInvalidTransition)
		}
		if next == cart.StatusCancelled {
			if err := tx.Model(&models.Product{}).Where("id = ?", o.ProductID).
				Update("stock", gorm.Expr("stock + ?", o.Quantity)).Error; err != nil {
				return err
			}
		}
		o.Status = next
		updated = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
