package utils

import (
	"context"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go"
	"github.com/stripe/stripe-go/paymentintent"
)

const (
	PaymentSucceeded = "succeeded"

	donorEmailMetadata = "donor_email"
)

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
	ReceiptEmail string
	// DonorEmail is the account that created the intent.
	DonorEmail string
}

// Payments creates and inspects card payment intents at the processor.
type Payments interface {
	CreateIntent(ctx context.Context, amount int64, currency, email string) (*PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

type StripePayments struct {
	intents paymentintent.Client
}

func NewStripePayments(secretKey string) *StripePayments {
	return &StripePayments{
		intents: paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

func (s *StripePayments) CreateIntent(ctx context.Context, amount int64, currency, email string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(strings.ToLower(currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	if email != "" {
		params.ReceiptEmail = stripe.String(email)
		params.AddMetadata(donorEmailMetadata, email)
	}
	params.Context = ctx

	pi, err := s.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

func (s *StripePayments) GetIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.intents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

func fromStripe(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		ReceiptEmail: pi.ReceiptEmail,
		DonorEmail:   pi.Metadata[donorEmailMetadata],
	}
}
