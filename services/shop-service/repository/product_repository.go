package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/services/shop-service/models"
)

// ErrOutOfStock is returned when an order asks for more units than remain.
var ErrOutOfStock = fmt.Errorf("insufficient stock: %w", cart.ErrValidation)

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, cart.ErrNotFound)
	}
	return err
}

// ProductRepository defines data access for products.
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindAll(ctx context.Context, category string) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	FindItem(ctx context.Context, id uint) (*cart.CatalogItem, error)
}

// GormProductRepository implements ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository.
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

// FindAll lists products, optionally restricted to one category.
func (r *GormProductRepository) FindAll(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	q := r.db.WithContext(ctx).Order("id ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormProductRepository) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Distinct("category").Where("category <> ''").Order("category ASC").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update overwrites the editable columns of an existing product.
func (r *GormProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":        product.Name,
			"category":    product.Category,
			"price":       product.Price,
			"stock":       product.Stock,
			"image_url":   product.ImageURL,
			"description": product.Description,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", product.ID, cart.ErrNotFound)
	}
	return nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, cart.ErrNotFound)
	}
	return nil
}

// FindItem satisfies cart.Catalog.
func (r *GormProductRepository) FindItem(ctx context.Context, id uint) (*cart.CatalogItem, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.CatalogItem(), nil
}
