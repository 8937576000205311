package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/services/booking-service/models"
	"github.com/yashrajoria/stayshop/services/booking-service/services"
)

type mockRoomRepo struct {
	rooms  map[uint]*models.Room
	nextID uint
}

func newMockRoomRepo() *mockRoomRepo {
	r := &mockRoomRepo{rooms: map[uint]*models.Room{}, nextID: 1}
	for _, room := range []models.Room{
		{Name: "Deluxe Room", RoomType: "Deluxe", Capacity: 2, PricePerNight: decimal.NewFromInt(2500)},
		{Name: "Executive Suite", RoomType: "Suite", Capacity: 3, PricePerNight: decimal.NewFromInt(4500)},
		{Name: "Standard Room", RoomType: "Standard", Capacity: 2, PricePerNight: decimal.NewFromInt(1500)},
	} {
		room := room
		_ = r.Create(context.Background(), &room)
	}
	return r
}

func (m *mockRoomRepo) FindByID(_ context.Context, id uint) (*models.Room, error) {
	room, ok := m.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", id, cart.ErrNotFound)
	}
	cp := *room
	return &cp, nil
}

func (m *mockRoomRepo) FindAll(_ context.Context) ([]models.Room, error) {
	out := []models.Room{}
	for id := uint(1); id < m.nextID; id++ {
		if r, ok := m.rooms[id]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRoomRepo) Create(_ context.Context, room *models.Room) error {
	room.ID = m.nextID
	m.nextID++
	cp := *room
	m.rooms[room.ID] = &cp
	return nil
}

func (m *mockRoomRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.rooms[id]; !ok {
		return fmt.Errorf("room %d: %w", id, cart.ErrNotFound)
	}
	delete(m.rooms, id)
	return nil
}

func (m *mockRoomRepo) FindItem(ctx context.Context, id uint) (*cart.CatalogItem, error) {
	room, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return room.CatalogItem(), nil
}

type mockBookingRepo struct {
	bookings []*models.Booking
	failWith error
}

func (m *mockBookingRepo) CreateAll(_ context.Context, bookings []*models.Booking) error {
	if m.failWith != nil {
		return m.failWith
	}
	for _, b := range bookings {
		b.ID = uint(len(m.bookings) + 1)
		m.bookings = append(m.bookings, b)
	}
	return nil
}

func (m *mockBookingRepo) ListByCustomer(_ context.Context, email string) ([]models.Booking, error) {
	out := []models.Booking{}
	for _, b := range m.bookings {
		if b.CustomerEmail == email {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListAll(_ context.Context) ([]models.Booking, error) {
	out := []models.Booking{}
	for _, b := range m.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockBookingRepo) FindByID(_ context.Context, id uint) (*models.Booking, error) {
	for _, b := range m.bookings {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("booking %d: %w", id, cart.ErrNotFound)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id uint, next cart.Status) (*models.Booking, error) {
	for _, b := range m.bookings {
		if b.ID != id {
			continue
		}
		if b.Status != next && !b.Status.CanTransition(next) {
			return nil, cart.ErrInvalidTransition
		}
		b.Status = next
		cp := *b
		return &cp, nil
	}
	return nil, fmt.Errorf("booking %d: %w", id, cart.ErrNotFound)
}

type mockReviewRepo struct {
	reviews []*models.Review
}

func (m *mockReviewRepo) Create(_ context.Context, r *models.Review) error {
	r.ID = uint(len(m.reviews) + 1)
	m.reviews = append(m.reviews, r)
	return nil
}

func (m *mockReviewRepo) ListByRoom(_ context.Context, roomID uint) ([]models.Review, error) {
	var out []models.Review
	for _, r := range m.reviews {
		if r.RoomID == roomID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockReviewRepo) ListAll(_ context.Context) ([]models.Review, error) {
	var out []models.Review
	for _, r := range m.reviews {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockReviewRepo) FindByID(_ context.Context, id uint) (*models.Review, error) {
	for _, r := range m.reviews {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("review %d: %w", id, cart.ErrNotFound)
}

func (m *mockReviewRepo) ClearImage(_ context.Context, id uint) error {
	for _, r := range m.reviews {
		if r.ID == id {
			r.Image = ""
			return nil
		}
	}
	return cart.ErrNotFound
}

type mockGateway struct {
	calls  int
	amount decimal.Decimal
	err    error
}

func (m *mockGateway) Charge(_ context.Context, amount decimal.Decimal, _, _, reference string) (*services.Charge, error) {
	m.calls++
	m.amount = amount
	if m.err != nil {
		return nil, m.err
	}
	return &services.Charge{Reference: "ref-" + reference[:8], Status: "success"}, nil
}

type publishedEvent struct {
	Type string
	Key  string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Key: key})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type memImageStore struct {
	saved   map[string][]byte
	deleted []string
	failOn  error
}

func newMemImageStore() *memImageStore {
	return &memImageStore{saved: map[string][]byte{}}
}

func (m *memImageStore) Save(_ context.Context, name string, body []byte, _ string) (string, error) {
	if m.failOn != nil {
		return "", m.failOn
	}
	loc := "/uploads/" + name
	m.saved[loc] = body
	return loc, nil
}

func (m *memImageStore) Delete(_ context.Context, location string) error {
	m.deleted = append(m.deleted, location)
	delete(m.saved, location)
	return nil
}

var errBoom = errors.New("boom")
