// Package session keeps per-visitor state (cart, admin flag, flashes,
// checkout receipt) behind a pluggable Store and a gin middleware.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yashrajoria/stayshop/pkg/cart"
)

// Flash categories.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash is a one-shot user notice shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// PaymentInfo is the receipt of the last successful checkout.
type PaymentInfo struct {
	FullName   string            `json:"full_name"`
	Email      string            `json:"email"`
	Total      decimal.Decimal   `json:"total_price"`
	OrderCount int               `json:"booking_count"`
	OrderIDs   []uint            `json:"order_ids"`
	Lines      []cart.PricedLine `json:"lines,omitempty"`
	Reference  string            `json:"reference,omitempty"`
	Status     string            `json:"status"`
}

// Session is the typed session payload.
type Session struct {
	ID        string         `json:"id"`
	Cart      cart.Cart      `json:"cart"`
	Admin     bool           `json:"admin"`
	Customer  *cart.Customer `json:"customer,omitempty"`
	Payment   *PaymentInfo   `json:"payment,omitempty"`
	Flashes   []Flash        `json:"flashes,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// New returns an empty session with the given id.
func New(id string) *Session {
	return &Session{ID: id, UpdatedAt: time.Now()}
}

// AddFlash queues a notice.
func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns queued notices and clears them.
func (s *Session) PopFlashes() []Flash {
	out := s.Flashes
	s.Flashes = nil
	if out == nil {
		out = []Flash{}
	}
	return out
}

// Store persists sessions. Get returns (nil, nil) for unknown ids.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// ErrCorrupt is returned by stores for a payload that does not parse.
// Callers treat the session as missing.
var ErrCorrupt = errors.New("session payload corrupt")

func decode(id string, data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	s.ID = id
	s.Cart.Sanitize()
	return &s, nil
}
