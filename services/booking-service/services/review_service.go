package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yashrajoria/stayshop/services/booking-service/models"
	"github.com/yashrajoria/stayshop/services/booking-service/repository"
	apperrors "github.com/yashrajoria/stayshop/services/common/errors"
)

// MaxImageSize caps review uploads.
const MaxImageSize = 5 << 20

var allowedImageExt = map[string]bool{"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true}

// ErrInvalidImage marks an upload with a bad extension, size or content.
var ErrInvalidImage = errors.New("invalid review image")

// Upload is a file read from a multipart form.
type Upload struct {
	Filename string
	Body     []byte
}

// ReviewInput is the raw review form.
type ReviewInput struct {
	Name    string
	Rating  string
	Comment string
	Image   *Upload
}

// ReviewResult reports the saved review. ImageRejected is set when an image
// was sent but could not be stored; the review itself is still saved.
type ReviewResult struct {
	Review        *models.Review
	ImageRejected bool
}

// RoomReviews groups reviews under their room.
type RoomReviews struct {
	Room    *models.Room    `json:"room"`
	Reviews []models.Review `json:"reviews"`
}

// ReviewService defines review operations.
type ReviewService interface {
	AddReview(ctx context.Context, roomID uint, sessionID string, in ReviewInput) (*ReviewResult, error)
	DeleteImage(ctx context.Context, reviewID uint, sessionID string) error
	GroupedReviews(ctx context.Context) ([]RoomReviews, error)
}

type reviewServiceImpl struct {
	rooms   repository.RoomRepository
	reviews repository.ReviewRepository
	images  ImageStore
	logger  *zap.Logger
}

func NewReviewService(rooms repository.RoomRepository, reviews repository.ReviewRepository, images ImageStore, logger *zap.Logger) ReviewService {
	return &reviewServiceImpl{rooms: rooms, reviews: reviews, images: images, logger: logger}
}

// ParseRating defaults to 5 and clamps to 1..5.
func ParseRating(v string) int {
	r, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 5
	}
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}

// ValidateImage returns the normalized extension and content type of an
// acceptable upload.
func ValidateImage(u *Upload) (ext, contentType string, err error) {
	ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(u.Filename), "."))
	if !allowedImageExt[ext] {
		return "", "", fmt.Errorf("extension %q: %w", ext, ErrInvalidImage)
	}
	if len(u.Body) == 0 || len(u.Body) > MaxImageSize {
		return "", "", fmt.Errorf("size %d: %w", len(u.Body), ErrInvalidImage)
	}
	contentType = http.DetectContentType(u.Body)
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", fmt.Errorf("content %s: %w", contentType, ErrInvalidImage)
	}
	return ext, contentType, nil
}

func (s *reviewServiceImpl) AddReview(ctx context.Context, roomID uint, sessionID string, in ReviewInput) (*ReviewResult, error) {
	if _, err := s.rooms.FindByID(ctx, roomID); err != nil {
		return nil, err
	}

	review := &models.Review{
		RoomID:    roomID,
		SessionID: sessionID,
		Name:      defaultString(in.Name, "Anonymous"),
		Rating:    ParseRating(in.Rating),
		Comment:   strings.TrimSpace(in.Comment),
	}

	result := &ReviewResult{Review: review}
	if in.Image != nil && in.Image.Filename != "" {
		location, err := s.storeImage(ctx, in.Image)
		if err != nil {
			s.logger.Warn("review image rejected", zap.Uint("room_id", roomID), zap.Error(err))
			result.ImageRejected = true
		}
		review.Image = location
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if review.Image != "" {
			_ = s.images.Delete(ctx, review.Image)
		}
		return nil, err
	}
	return result, nil
}

func (s *reviewServiceImpl) storeImage(ctx context.Context, u *Upload) (string, error) {
	ext, contentType, err := ValidateImage(u)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("review_%s_%d.%s", strings.ReplaceAll(uuid.NewString(), "-", ""), time.Now().Unix(), ext)
	return s.images.Save(ctx, name, u.Body, contentType)
}

// DeleteImage removes the photo of a review written by the same session.
func (s *reviewServiceImpl) DeleteImage(ctx context.Context, reviewID uint, sessionID string) error {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if sessionID == "" || review.SessionID != sessionID {
		return apperrors.Wrap(apperrors.ErrForbidden, fmt.Errorf("review %d belongs to another visitor", reviewID))
	}
	if review.Image == "" {
		return nil
	}
	if err := s.images.Delete(ctx, review.Image); err != nil {
		s.logger.Warn("review image delete failed", zap.Uint("review_id", reviewID), zap.Error(err))
	}
	return s.reviews.ClearImage(ctx, reviewID)
}

func (s *reviewServiceImpl) GroupedReviews(ctx context.Context) ([]RoomReviews, error) {
	reviews, err := s.reviews.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	roomByID := make(map[uint]*models.Room, len(rooms))
	for i := range rooms {
		roomByID[rooms[i].ID] = &rooms[i]
	}

	byRoom := make(map[uint][]models.Review)
	var ids []uint
	for _, r := range reviews {
		if _, seen := byRoom[r.RoomID]; !seen {
			ids = append(ids, r.RoomID)
		}
		byRoom[r.RoomID] = append(byRoom[r.RoomID], r)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]RoomReviews, 0, len(ids))
	for _, id := range ids {
		out = append(out, RoomReviews{Room: roomByID[id], Reviews: byRoom[id]})
	}
	return out, nil
}
