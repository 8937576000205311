package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a persisted order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus accepts a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("status %q: %w", s, ErrValidation)
}

// CanTransition reports whether an order may move from s to next.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusCompleted || next == StatusCancelled
	case StatusCompleted:
		return next == StatusCancelled
	}
	return false
}

// Customer identifies who checked out.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order is the persisted snapshot of one cart line. Total is fixed at
// creation and always equals Line.Total.
type Order struct {
	ID        uint            `json:"id"`
	Customer  Customer        `json:"customer"`
	Line      PricedLine      `json:"line"`
	Total     decimal.Decimal `json:"total"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderStore persists orders. CreateOrders must write all orders or none and
// fill in their IDs.
type OrderStore interface {
	CreateOrders(ctx context.Context, orders []*Order) error
}

// Checkout turns every line into its own completed order and persists them in
// one call. An empty line list is refused with ErrEmpty before touching the
// store.
func Checkout(ctx context.Context, store OrderStore, lines []LineItem, customer Customer, now time.Time) ([]*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmpty
	}

	summary := ComputeTotals(lines)
	orders := make([]*Order, 0, len(summary.Lines))
	for _, pl := range summary.Lines {
		orders = append(orders, &Order{
			Customer:  customer,
			Line:      pl,
			Total:     pl.Total,
			Status:    StatusCompleted,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := store.CreateOrders(ctx, orders); err != nil {
		return nil, fmt.Errorf("persist orders: %w", err)
	}
	return orders, nil
}
