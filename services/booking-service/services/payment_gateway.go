package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// ErrCardDeclined is returned by gateways that refuse the charge outright.
var ErrCardDeclined = errors.New("card declined")

// Charge is the gateway's answer to a successful charge request.
type Charge struct {
	Reference string
	Status    string
}

// PaymentGateway charges one amount for a checkout.
type PaymentGateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, currency, cardNumber, reference string) (*Charge, error)
}

// MockGateway approves every card except the well-known decline test number.
type MockGateway struct{}

const declineCard = "4000000000000002"

func (MockGateway) Charge(_ context.Context, amount decimal.Decimal, _, cardNumber, reference string) (*Charge, error) {
	if strings.ReplaceAll(strings.TrimSpace(cardNumber), " ", "") == declineCard {
		return nil, ErrCardDeclined
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("negative amount %s", amount)
	}
	if reference == "" {
		reference = uuid.NewString()
	}
	return &Charge{Reference: "mock_" + reference, Status: "success"}, nil
}

// StripeGateway creates a PaymentIntent per checkout. Confirmation happens
// client side, so the booking is recorded against the intent id.
type StripeGateway struct{}

// NewStripeGateway sets the process-wide stripe key.
func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (StripeGateway) Charge(ctx context.Context, amount decimal.Decimal, currency, _, reference string) (*Charge, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(MinorUnits(amount)),
		Currency: stripe.String(strings.ToLower(currency)),
	}
	params.Context = ctx
	params.AddMetadata("reference", reference)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}
	return &Charge{Reference: pi.ID, Status: string(pi.Status)}, nil
}

// MinorUnits converts an amount to the smallest currency unit, rounded.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
