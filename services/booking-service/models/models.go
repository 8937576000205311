package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yashrajoria/stayshop/pkg/cart"
)

// Room is a bookable room type.
type Room struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(120);not null" json:"name"`
	RoomType      string          `gorm:"type:varchar(60);not null" json:"room_type"`
	Capacity      int             `gorm:"not null;default:1" json:"capacity"`
	PricePerNight decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_per_night"`
	ImageURL      string          `gorm:"type:varchar(512)" json:"image_url"`
	Amenities     string          `gorm:"type:text" json:"amenities"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// CatalogItem projects the room for the cart.
func (r *Room) CatalogItem() *cart.CatalogItem {
	return &cart.CatalogItem{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.RoomType,
		UnitPrice: r.PricePerNight,
		Capacity:  r.Capacity,
		ImageURL:  r.ImageURL,
	}
}

// Booking is one persisted stay. Price fields are a snapshot taken at checkout.
type Booking struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CustomerName  string          `gorm:"type:varchar(120);not null" json:"customer_name"`
	CustomerEmail string          `gorm:"type:varchar(254);index;not null" json:"customer_email"`
	RoomID        uint            `gorm:"index;not null" json:"room_id"`
	RoomName      string          `gorm:"type:varchar(120)" json:"room_name"`
	RoomType      string          `gorm:"type:varchar(60)" json:"room_type"`
	CheckIn       string          `gorm:"type:varchar(32)" json:"check_in"`
	CheckOut      string          `gorm:"type:varchar(32)" json:"check_out"`
	Guests        int             `gorm:"not null;default:1" json:"guests"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	PricePerNight decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_per_night"`
	Nights        int             `gorm:"not null;default:1" json:"nights"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Status        cart.Status     `gorm:"type:varchar(20);not null;default:completed" json:"status"`
	PaymentRef    string          `gorm:"type:varchar(120)" json:"payment_ref,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BookingFromOrder flattens a checked-out cart line into a row.
func BookingFromOrder(o *cart.Order) *Booking {
	b := &Booking{
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		RoomID:        o.Line.ItemID,
		RoomName:      o.Line.Name,
		RoomType:      o.Line.Category,
		Guests:        1,
		Quantity:      o.Line.Quantity,
		PricePerNight: o.Line.UnitPrice,
		Nights:        o.Line.Nights,
		TotalPrice:    o.Total,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if s := o.Line.Stay; s != nil {
		b.CheckIn = s.CheckIn
		b.CheckOut = s.CheckOut
		b.Guests = s.Guests
	}
	return b
}

// Review is a guest review of a room. SessionID ties the review to the
// visitor who wrote it; it is never exposed.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"index;not null" json:"room_id"`
	SessionID string    `gorm:"type:varchar(64);index" json:"-"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	Image     string    `gorm:"type:varchar(512)" json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BookingStatusEvent is published when an admin changes a booking's status.
type BookingStatusEvent struct {
	BookingID     uint        `json:"booking_id"`
	Status        cart.Status `json:"status"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
}

// CustomerSummary aggregates bookings per customer for the admin view.
type CustomerSummary struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Count      int             `json:"count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// BookingCreatedEvent is published once per persisted booking.
type BookingCreatedEvent struct {
	BookingID     uint            `json:"booking_id"`
	RoomID        uint            `json:"room_id"`
	RoomName      string          `json:"room_name"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CheckIn       string          `json:"check_in"`
	CheckOut      string          `json:"check_out"`
	Nights        int             `json:"nights"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
}
