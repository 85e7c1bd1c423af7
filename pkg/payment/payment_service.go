package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

var (
	ErrInvalidAmount = errors.New("invalid payment amount")
	ErrProviderDown  = errors.New("payment provider unavailable")
	ErrDeclined      = errors.New("payment declined")
)

// IntentRequest describes the amount a client is about to pay for an envoi.
type IntentRequest struct {
	Amount   float64
	Currency string
	// ReferenceID doubles as the idempotency key.
	ReferenceID string
	Metadata    map[string]string
}

// Intent is the provider side of a payment the front end still has to confirm.
type Intent struct {
	ProviderRef  string
	ClientSecret string
	Status       string
}

// ServiceInterface defines the contract for a payment processing service.
type ServiceInterface interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// StripeService creates PaymentIntents through the Stripe API.
type StripeService struct {
	client *client.API
}

func NewStripeService(apiKey string) *StripeService {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeService{client: sc}
}

// NewStripeServiceWithBackends is used to point the client at another API host.
func NewStripeServiceWithBackends(apiKey string, backends *stripe.Backends) *StripeService {
	return &StripeService{client: client.New(apiKey, backends)}
}

// CreateIntent opens a PaymentIntent for the amount, in the currency's minor unit.
func (s *StripeService) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	cents := ToCents(req.Amount)
	if cents <= 0 {
		return nil, ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.ReferenceID != "" {
		params.IdempotencyKey = stripe.String(req.ReferenceID)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &Intent{ProviderRef: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

// ToCents converts a decimal amount to the smallest currency unit.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Type == stripe.ErrorTypeCard {
			return fmt.Errorf("%w: %s", ErrDeclined, stripeErr.Msg)
		}
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return ErrProviderDown
		}
	}
	return fmt.Errorf("payment.stripe: %w", err)
}
