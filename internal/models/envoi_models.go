package models

import "time"

// Envoi is a confirmed shipment, tracked once paid.
type Envoi struct {
	ID               string           `json:"id"`
	SimulationID     string           `json:"simulation_id"`
	UserID           string           `json:"user_id"`
	DestinataireID   *string          `json:"destinataire_id,omitempty"`
	TrackingNumber   *string          `json:"tracking_number,omitempty"`
	Status           EnvoiStatus      `json:"envoi_status"`
	SimulationStatus SimulationStatus `json:"simulation_status"`
	TotalPrice       float64          `json:"total_price"`
	PaymentID        *string          `json:"payment_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// UpdateEnvoiRequest is the body of PUT /envois/:envoiId. Every field is optional;
// statuses are set as given.
type UpdateEnvoiRequest struct {
	EnvoiStatus      *EnvoiStatus      `json:"envoiStatus,omitempty" validate:"omitempty,oneof=PENDING SENT DELIVERED CANCELLED RETURNED"`
	SimulationStatus *SimulationStatus `json:"simulationStatus,omitempty" validate:"omitempty,oneof=DRAFT CONFIRMED COMPLETED CANCELLED"`
	TrackingNumber   *string           `json:"trackingNumber,omitempty" validate:"omitempty,max=64"`
	Payment          *PaymentInput     `json:"payment,omitempty"`
}

// PaymentStatus mirrors the provider state we care about.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// PaymentInput links an envoi to a provider payment.
type PaymentInput struct {
	ProviderRef string        `json:"providerRef" validate:"required"`
	Amount      float64       `json:"amount" validate:"gte=0"`
	Currency    string        `json:"currency" validate:"omitempty,len=3"`
	Status      PaymentStatus `json:"status" validate:"required,oneof=PENDING SUCCEEDED FAILED"`
}

// Payment is the persisted payment record of an envoi.
type Payment struct {
	ID          string        `json:"id"`
	EnvoiID     string        `json:"envoi_id"`
	ProviderRef string        `json:"provider_ref"`
	Amount      float64       `json:"amount"`
	Currency    string        `json:"currency"`
	Status      PaymentStatus `json:"status"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// PaymentIntentResponse hands the Stripe client secret back to the front end.
type PaymentIntentResponse struct {
	PaymentID    string `json:"payment_id"`
	ClientSecret string `json:"client_secret"`
}

// EnvoiEvent is published on every envoi update.
type EnvoiEvent struct {
	EnvoiID          string           `json:"envoi_id"`
	SimulationID     string           `json:"simulation_id"`
	EnvoiStatus      EnvoiStatus      `json:"envoi_status"`
	SimulationStatus SimulationStatus `json:"simulation_status"`
	TrackingNumber   *string          `json:"tracking_number,omitempty"`
	OccurredAt       time.Time        `json:"occurred_at"`
}
