package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yashrajoria/stayshop/pkg/cart"
)

// Product is a catalog entry.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(160);not null" json:"name"`
	Category    string          `gorm:"type:varchar(80);index" json:"category"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	ImageURL    string          `gorm:"type:varchar(512)" json:"image_url"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// CatalogItem projects the product for the cart.
func (p *Product) CatalogItem() *cart.CatalogItem {
	return &cart.CatalogItem{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		UnitPrice: p.Price,
		Stock:     p.Stock,
		ImageURL:  p.ImageURL,
	}
}

// Order is one purchased cart line.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CustomerName  string          `gorm:"type:varchar(120);not null" json:"customer_name"`
	CustomerEmail string          `gorm:"type:varchar(254);index;not null" json:"customer_email"`
	ProductID     uint            `gorm:"index;not null" json:"product_id"`
	ProductName   string          `gorm:"type:varchar(160)" json:"product_name"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Status        cart.Status     `gorm:"type:varchar(20);not null;default:completed" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderFromCart flattens a checked-out cart line into a row.
func OrderFromCart(o *cart.Order) *Order {
	return &Order{
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		ProductID:     o.Line.ItemID,
		ProductName:   o.Line.Name,
		Quantity:      o.Line.Quantity,
		UnitPrice:     o.Line.UnitPrice,
		TotalPrice:    o.Total,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// OrderCreatedEvent is published once per persisted order.
type OrderCreatedEvent struct {
	OrderID       uint            `json:"order_id"`
	ProductID     uint            `json:"product_id"`
	ProductName   string          `json:"product_name"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Quantity      int             `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// OrderStatusEvent is published when an admin changes an order's status.
type OrderStatusEvent struct {
	OrderID       uint        `json:"order_id"`
	Status        cart.Status `json:"status"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
}
