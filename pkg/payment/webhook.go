package payment

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

// SignatureHeader carries the Stripe webhook signature.
const SignatureHeader = "Stripe-Signature"

// Outcome is the final state of a PaymentIntent reported by a webhook.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Event is a verified webhook reduced to what ColisApp acts on.
type Event struct {
	ProviderRef  string
	Outcome      Outcome
	ErrorMessage string
}

// WebhookProcessor verifies and decodes Stripe webhooks.
type WebhookProcessor struct {
	secret string
}

func NewWebhookProcessor(secret string) *WebhookProcessor {
	return &WebhookProcessor{secret: secret}
}

// Parse checks the signature and returns the PaymentIntent outcome.
// Events of other types yield (nil, nil).
func (p *WebhookProcessor) Parse(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.secret)
	if err != nil {
		return nil, fmt.Errorf("stripe signature invalid: %w", err)
	}

	var outcome Outcome
	switch event.Type {
	case "payment_intent.succeeded":
		outcome = OutcomeSucceeded
	case "payment_intent.payment_failed":
		outcome = OutcomeFailed
	default:
		return nil, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}

	out := &Event{ProviderRef: pi.ID, Outcome: outcome}
	if pi.LastPaymentError != nil {
		out.ErrorMessage = pi.LastPaymentError.Msg
	}
	return out, nil
}
