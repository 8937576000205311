package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/stayshop/pkg/aws"
	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/pkg/events"
	"github.com/yashrajoria/stayshop/services/booking-service/models"
	"github.com/yashrajoria/stayshop/services/booking-service/repository"
	apperrors "github.com/yashrajoria/stayshop/services/common/errors"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

var (
	ErrOverCapacity = fmt.Errorf("more guests than the room sleeps: %w", cart.ErrValidation)
	ErrStayTooLarge = fmt.Errorf("stay total exceeds the storable amount: %w", cart.ErrValidation)
)

// maxStoredTotal is the largest value of a numeric(12,2) column.
var maxStoredTotal = decimal.RequireFromString("9999999999.99")

// RoomView is a room with its reviews.
type RoomView struct {
	models.Room
	Reviews []models.Review `json:"reviews"`
}

// RoomInput is the raw admin form. Numeric fields are parsed leniently.
type RoomInput struct {
	Name          string
	RoomType      string
	Capacity      string
	PricePerNight string
	ImageURL      string
	Amenities     string
}

// Receipt describes a completed checkout.
type Receipt struct {
	Bookings  []*models.Booking
	Summary   cart.Summary
	Reference string
	Status    string
}

// BookingService defines the hotel's business operations.
type BookingService interface {
	ListRooms(ctx context.Context) ([]RoomView, error)
	GetRoom(ctx context.Context, id uint) (*RoomView, error)
	AddStay(ctx context.Context, c *cart.Cart, roomID uint, stay cart.Stay) (*cart.LineItem, error)
	CustomerBookings(ctx context.Context, email string) ([]models.Booking, error)
	Checkout(ctx context.Context, c *cart.Cart, customer cart.Customer, cardNumber string) (*Receipt, error)
	AdminBookings(ctx context.Context) ([]models.Booking, []models.CustomerSummary, error)
	UpdateBookingStatus(ctx context.Context, id uint, status string) (*models.Booking, error)
	CreateRoom(ctx context.Context, in RoomInput) (*models.Room, error)
	DeleteRoom(ctx context.Context, id uint) error
}

type bookingServiceImpl struct {
	rooms     repository.RoomRepository
	bookings  repository.BookingRepository
	reviews   repository.ReviewRepository
	gateway   PaymentGateway
	publisher events.Publisher
	metrics   *awspkg.MetricsClient
	currency  string
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingService wires the booking operations. metrics may be nil.
func NewBookingService(
	rooms repository.RoomRepository,
	bookings repository.BookingRepository,
	reviews repository.ReviewRepository,
	gateway PaymentGateway,
	publisher events.Publisher,
	metrics *awspkg.MetricsClient,
	currency string,
	logger *zap.Logger,
) BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if currency == "" {
		currency = "THB"
	}
	return &bookingServiceImpl{
		rooms:     rooms,
		bookings:  bookings,
		reviews:   reviews,
		gateway:   gateway,
		publisher: publisher,
		metrics:   metrics,
		currency:  currency,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *bookingServiceImpl) ListRooms(ctx context.Context) ([]RoomView, error) {
	rooms, err := s.rooms.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byRoom := make(map[uint][]models.Review)
	for _, r := range reviews {
		byRoom[r.RoomID] = append(byRoom[r.RoomID], r)
	}

	views := make([]RoomView, 0, len(rooms))
	for _, room := range rooms {
		rv := byRoom[room.ID]
		if rv == nil {
			rv = []models.Review{}
		}
		views = append(views, RoomView{Room: room, Reviews: rv})
	}
	return views, nil
}

func (s *bookingServiceImpl) GetRoom(ctx context.Context, id uint) (*RoomView, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &RoomView{Room: *room, Reviews: reviews}, nil
}

// AddStay adds a booking line after checking the party fits the room and the
// stay can be stored once paid for.
func (s *bookingServiceImpl) AddStay(ctx context.Context, c *cart.Cart, roomID uint, stay cart.Stay) (*cart.LineItem, error) {
	room, err := s.rooms.FindItem(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Capacity > 0 && stay.Guests > room.Capacity {
		return nil, ErrOverCapacity
	}
	nights := cart.Nights(cart.NormalizeDate(stay.CheckIn), cart.NormalizeDate(stay.CheckOut))
	if room.UnitPrice.Mul(decimal.NewFromInt(int64(nights))).GreaterThan(maxStoredTotal) {
		return nil, ErrStayTooLarge
	}
	return c.Add(ctx, s.rooms, roomID, 1, &stay)
}

// storable rejects a summary with a line that the bookings table cannot hold.
func storable(summary cart.Summary) error {
	for _, l := range summary.Lines {
		if l.Total.GreaterThan(maxStoredTotal) {
			return fmt.Errorf("%s: %w", l.Name, ErrStayTooLarge)
		}
	}
	return nil
}

func (s *bookingServiceImpl) CustomerBookings(ctx context.Context, email string) ([]models.Booking, error) {
	if strings.TrimSpace(email) == "" {
		return []models.Booking{}, nil
	}
	return s.bookings.ListByCustomer(ctx, email)
}

// Checkout charges the cart total once, then persists one booking per line
// and empties the cart. Nothing is charged for an empty cart.
func (s *bookingServiceImpl) Checkout(ctx context.Context, c *cart.Cart, customer cart.Customer, cardNumber string) (*Receipt, error) {
	if c.Len() == 0 {
		s.metric(s.metrics.RecordCount(ctx, awspkg.MetricCheckoutRefused, map[string]string{"Service": "booking-service"}))
		return nil, cart.ErrEmpty
	}

	summary := cart.ComputeTotals(c.Items)
	if err := storable(summary); err != nil {
		return nil, err
	}
	charge, err := s.gateway.Charge(ctx, summary.Total, s.currency, cardNumber, uuid.NewString())
	if err != nil {
		s.logger.Warn("payment failed", zap.String("email", customer.Email), zap.Error(err))
		s.metric(s.metrics.RecordCount(ctx, awspkg.MetricPaymentFailed, map[string]string{"Service": "booking-service"}))
		return nil, apperrors.Wrap(apperrors.ErrPaymentFailed, err)
	}

	store := &bookingOrderStore{repo: s.bookings, paymentRef: charge.Reference}
	if _, err := cart.Checkout(ctx, store, c.Items, customer, s.now()); err != nil {
		s.logger.Error("checkout persist failed after charge",
			zap.String("payment_ref", charge.Reference), zap.Error(err))
		return nil, err
	}
	c.Clear()

	for _, b := range store.created {
		s.publish(ctx, EventBookingCreated, b.ID, models.BookingCreatedEvent{
			BookingID:     b.ID,
			RoomID:        b.RoomID,
			RoomName:      b.RoomName,
			CustomerName:  b.CustomerName,
			CustomerEmail: b.CustomerEmail,
			CheckIn:       b.CheckIn,
			CheckOut:      b.CheckOut,
			Nights:        b.Nights,
			TotalPrice:    b.TotalPrice,
			PaymentRef:    b.PaymentRef,
		})
	}
	s.metric(s.metrics.RecordCheckout(ctx, "booking-service", len(store.created)))

	s.logger.Info("checkout completed",
		zap.String("email", customer.Email),
		zap.Int("bookings", len(store.created)),
		zap.String("total", summary.Total.StringFixed(2)),
		zap.String("payment_ref", charge.Reference))

	return &Receipt{
		Bookings:  store.created,
		Summary:   summary,
		Reference: charge.Reference,
		Status:    charge.Status,
	}, nil
}

// metric logs a metrics error. Metrics never fail a request.
func (s *bookingServiceImpl) metric(err error) {
	if err != nil {
		s.logger.Debug("metric not recorded", zap.Error(err))
	}
}

func (s *bookingServiceImpl) AdminBookings(ctx context.Context) ([]models.Booking, []models.CustomerSummary, error) {
	all, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	return all, SummarizeCustomers(all), nil
}

// SummarizeCustomers groups bookings by email in first-seen order.
func SummarizeCustomers(bookings []models.Booking) []models.CustomerSummary {
	index := make(map[string]int)
	out := []models.CustomerSummary{}
	for _, b := range bookings {
		key := strings.ToLower(b.CustomerEmail)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, models.CustomerSummary{Name: b.CustomerName, Email: b.CustomerEmail, TotalSpent: decimal.Zero})
		}
		out[i].Count++
		out[i].TotalSpent = out[i].TotalSpent.Add(b.TotalPrice)
	}
	return out
}

func (s *bookingServiceImpl) UpdateBookingStatus(ctx context.Context, id uint, status string) (*models.Booking, error) {
	next, err := cart.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	b, err := s.bookings.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventBookingStatusChanged, b.ID, models.BookingStatusEvent{
		BookingID:     b.ID,
		Status:        b.Status,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
	})
	return b, nil
}

// CreateRoom stores a room from the admin form. A capacity or price that does
// not parse resets both to 1 and 0.
func (s *bookingServiceImpl) CreateRoom(ctx context.Context, in RoomInput) (*models.Room, error) {
	capacity, cErr := strconv.Atoi(strings.TrimSpace(in.Capacity))
	price, pErr := decimal.NewFromString(strings.TrimSpace(in.PricePerNight))
	if cErr != nil || pErr != nil {
		capacity, price = 1, decimal.Zero
	}
	if capacity < 1 {
		capacity = 1
	}
	if price.IsNegative() {
		price = decimal.Zero
	}

	room := &models.Room{
		Name:          defaultString(in.Name, "Unnamed"),
		RoomType:      defaultString(in.RoomType, "Standard"),
		Capacity:      capacity,
		PricePerNight: price.Round(2),
		ImageURL:      strings.TrimSpace(in.ImageURL),
		Amenities:     strings.TrimSpace(in.Amenities),
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		s.logger.Error("Failed to create room", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Room created", zap.Uint("room_id", room.ID), zap.String("name", room.Name))
	return room, nil
}

func (s *bookingServiceImpl) DeleteRoom(ctx context.Context, id uint) error {
	if err := s.rooms.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Room deleted", zap.Uint("room_id", id))
	return nil
}

func (s *bookingServiceImpl) publish(ctx context.Context, eventType string, id uint, payload any) {
	if err := s.publisher.Publish(ctx, eventType, strconv.FormatUint(uint64(id), 10), payload); err != nil {
		s.logger.Error("Failed to publish event", zap.String("event_type", eventType), zap.Uint("id", id), zap.Error(err))
	}
}

func defaultString(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}

// bookingOrderStore adapts the booking repository to cart.OrderStore.
type bookingOrderStore struct {
	repo       repository.BookingRepository
	paymentRef string
	created    []*models.Booking
}

func (s *bookingOrderStore) CreateOrders(ctx context.Context, orders []*cart.Order) error {
	rows := make([]*models.Booking, 0, len(orders))
	for _, o := range orders {
		b := models.BookingFromOrder(o)
		b.PaymentRef = s.paymentRef
		rows = append(rows, b)
	}
	if err := s.repo.CreateAll(ctx, rows); err != nil {
		return err
	}
	for i, b := range rows {
		orders[i].ID = b.ID
	}
	s.created = rows
	return nil
}
