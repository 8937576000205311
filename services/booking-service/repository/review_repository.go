package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yashrajoria/stayshop/services/booking-service/models"
)

// ReviewRepository defines data access for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByRoom(ctx context.Context, roomID uint) ([]models.Review, error)
	ListAll(ctx context.Context) ([]models.Review, error)
	FindByID(ctx context.Context, id uint) (*models.Review, error)
	ClearImage(ctx context.Context, id uint) error
}

// GormReviewRepository implements ReviewRepository using GORM.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository.
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *GormReviewRepository) ListByRoom(ctx context.Context, roomID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("created_at DESC, id DESC").Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *GormReviewRepository) ListAll(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).Order("room_id ASC, created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *GormReviewRepository) FindByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, notFound(err, "review", id)
	}
	return &review, nil
}

func (r *GormReviewRepository) ClearImage(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).Update("image", "")
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "review", id)
	}
	return nil
}
